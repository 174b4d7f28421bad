package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/grabarr/internal/api"
	"github.com/amaumene/grabarr/internal/bot"
	"github.com/amaumene/grabarr/internal/config"
	"github.com/amaumene/grabarr/internal/controllers"
	"github.com/amaumene/grabarr/internal/models"
	"github.com/amaumene/grabarr/internal/scheduler"
	"github.com/amaumene/grabarr/internal/services/telegram"
	"github.com/amaumene/grabarr/internal/services/ytdlp"
	"github.com/amaumene/grabarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Grabarr")
	logger.WithField("download_dir", cfg.DownloadDir).Info("Configuration loaded")

	// 3. Resolve the advertised link base
	if cfg.BaseURL == "" {
		baseURL, err := utils.PublicBaseURL(cfg.ServerPort)
		if err != nil {
			return fmt.Errorf("failed to resolve base URL: %w", err)
		}
		cfg.BaseURL = baseURL
	}
	logger.WithField("base_url", cfg.BaseURL).Info("Link base resolved")

	// 4. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 5. Load blocklist
	blocklist, err := utils.LoadBlocklist(cfg.BlocklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blocklist, continuing without it")
		blocklist = &utils.Blocklist{}
	} else {
		logger.Info("Blocklist loaded")
	}

	// 6. Initialize services
	ytdlpClient := ytdlp.NewClient(cfg, logger)
	logger.Info("Extraction engine client initialized")

	telegramClient, err := telegram.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram client: %w", err)
	}

	// 7. Initialize controllers
	cleanupCtrl := controllers.NewCleanupController(cfg, db, logger)
	downloadCtrl := controllers.NewDownloadController(ytdlpClient, telegramClient, db, cleanupCtrl, cfg, logger)
	convCtrl := controllers.NewConversationController(ytdlpClient, telegramClient, downloadCtrl, blocklist, logger)
	logger.Info("Controllers initialized")

	// 8. Initialize scheduler
	sched := scheduler.NewScheduler(cleanupCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 9. Start the two listeners: message dispatch loop and HTTP server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := bot.NewDispatcher(telegramClient, convCtrl, logger)
	go dispatcher.Run(ctx)

	server := api.NewServer(cfg, db, logger)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 10. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Grabarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Grabarr stopped")
	return nil
}
