package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Telegram
	BotToken string

	// Extraction engine
	YtdlpPath            string
	SocketTimeoutSeconds int // Socket-level timeout passed to yt-dlp (default: 30)
	FetchTimeoutMinutes  int // Overall deadline for one fetch, 0 disables it (default: 0)

	// Download
	DownloadDir      string
	RetentionSeconds int // Seconds an artifact stays on disk after delivery (default: 90)

	// Server
	ServerPort string
	BaseURL    string // Advertised link base; discovered from the public IP when empty

	// Paths
	BlocklistFile string // $CONFIG_DIR/blocklist.txt
	DatabaseFile  string // $CONFIG_DIR/grabarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("SOCKET_TIMEOUT_SECONDS", 30)
	viper.SetDefault("FETCH_TIMEOUT_MINUTES", 0)
	viper.SetDefault("DOWNLOAD_DIR", "./downloads")
	viper.SetDefault("RETENTION_SECONDS", 90)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "grabarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	downloadDir, err := filepath.Abs(viper.GetString("DOWNLOAD_DIR"))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for DOWNLOAD_DIR: %w", err)
	}
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	config := &Config{
		// Telegram
		BotToken: viper.GetString("BOT_TOKEN"),

		// Extraction engine
		YtdlpPath:            viper.GetString("YTDLP_PATH"),
		SocketTimeoutSeconds: viper.GetInt("SOCKET_TIMEOUT_SECONDS"),
		FetchTimeoutMinutes:  viper.GetInt("FETCH_TIMEOUT_MINUTES"),

		// Download
		DownloadDir:      downloadDir,
		RetentionSeconds: viper.GetInt("RETENTION_SECONDS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),
		BaseURL:    viper.GetString("BASE_URL"),

		// Paths
		BlocklistFile: filepath.Join(configDir, "blocklist.txt"),
		DatabaseFile:  filepath.Join(configDir, "grabarr.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if config.RetentionSeconds <= 0 {
		return nil, fmt.Errorf("RETENTION_SECONDS must be positive")
	}

	return config, nil
}
