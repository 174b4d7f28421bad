package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/controllers"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	cleanupCtrl *controllers.CleanupController
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupCtrl *controllers.CleanupController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		cleanupCtrl: cleanupCtrl,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 10 minutes: sweep job folders orphaned by a previous process
	_, err := s.cron.AddFunc("*/10 * * * *", func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial sweep immediately to reclaim leftovers from a crash
	go s.runSweep()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runSweep executes the orphan sweep job
func (s *Scheduler) runSweep() {
	s.logger.Debug("Running orphan sweep")

	if err := s.cleanupCtrl.SweepOrphans(); err != nil {
		s.logger.WithError(err).Error("Orphan sweep failed")
	}
}
