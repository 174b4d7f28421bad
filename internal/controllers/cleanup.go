package controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/config"
	"github.com/amaumene/grabarr/internal/models"
)

const minSweepAge = 10 * time.Minute

// CleanupController reclaims produced artifacts after the retention window
type CleanupController struct {
	downloadDir string
	retention   time.Duration
	db          *models.Database
	logger      *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(cfg *config.Config, db *models.Database, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		downloadDir: cfg.DownloadDir,
		retention:   time.Duration(cfg.RetentionSeconds) * time.Second,
		db:          db,
		logger:      logger,
	}
}

// ScheduleCleanup arms a one-shot deferred deletion of the artifact after the
// retention window. Fire-and-forget: there is no cancellation path, and the
// deletion never surfaces a user-visible error.
func (c *CleanupController) ScheduleCleanup(path string) {
	c.logger.WithFields(logrus.Fields{
		"file":      path,
		"retention": c.retention,
	}).Debug("Cleanup armed")

	time.AfterFunc(c.retention, func() {
		c.removeArtifact(path)
	})
}

func (c *CleanupController) removeArtifact(path string) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// The file may legitimately already be gone.
			c.logger.WithField("file", path).Debug("Cleanup found no file")
		} else {
			c.logger.WithError(err).WithField("file", path).Warn("Failed to remove artifact")
		}
	} else {
		c.logger.WithField("file", path).Info("Artifact removed after retention window")
	}

	// Drop the job folder once empty. Fails while other files remain.
	dir := filepath.Dir(path)
	if dir != c.downloadDir {
		_ = os.Remove(dir)
	}

	c.markReclaimed(path)
}

func (c *CleanupController) markReclaimed(path string) {
	folder := filepath.Base(filepath.Dir(path))
	job, err := c.db.GetJobByFolder(folder)
	if err != nil {
		return
	}
	job.Status = models.JobStatusReclaimed
	if err := c.db.UpdateJob(job); err != nil {
		c.logger.WithError(err).WithField("folder", folder).Warn("Failed to mark job reclaimed")
	}
}

// SweepOrphans removes job folders that outlived the retention window by a
// wide margin, e.g. leftovers from a previous process whose timers died with it.
func (c *CleanupController) SweepOrphans() error {
	entries, err := os.ReadDir(c.downloadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read download root: %w", err)
	}

	cutoff := time.Now().Add(-c.sweepAge())
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		dir := filepath.Join(c.downloadDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			c.logger.WithError(err).WithField("dir", dir).Warn("Failed to remove orphaned folder")
			continue
		}
		c.logger.WithField("dir", dir).Info("Orphaned job folder removed")
		removed++
	}

	if removed > 0 {
		c.logger.WithField("removed", removed).Info("Orphan sweep completed")
	}
	return nil
}

// sweepAge leaves in-flight jobs and freshly armed timers well alone
func (c *CleanupController) sweepAge() time.Duration {
	age := 10 * c.retention
	if age < minSweepAge {
		age = minSweepAge
	}
	return age
}
