package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/config"
	"github.com/amaumene/grabarr/internal/models"
	"github.com/amaumene/grabarr/internal/services/ytdlp"
	"github.com/amaumene/grabarr/internal/utils"
)

const (
	// inlineSizeLimit is the threshold below which artifacts are additionally
	// pushed into the chat as attachments. The link goes out either way.
	inlineSizeLimit = 50 * 1024 * 1024

	// contentIDTemplate is expanded by the extraction engine at fetch time,
	// completing the per-job folder name.
	contentIDTemplate  = "%(id)s"
	outputFileTemplate = "%(title)s.%(ext)s"
)

var selectorSanitizer = regexp.MustCompile(`[^A-Za-z0-9+._-]`)

// DownloadController executes resolved download jobs and delivers artifacts
type DownloadController struct {
	fetcher     Fetcher
	transport   Transport
	db          *models.Database
	cleanupCtrl *CleanupController
	downloadDir string
	baseURL     string
	logger      *logrus.Logger
}

// NewDownloadController creates a new download controller
func NewDownloadController(fetcher Fetcher, transport Transport, db *models.Database, cleanupCtrl *CleanupController, cfg *config.Config, logger *logrus.Logger) *DownloadController {
	return &DownloadController{
		fetcher:     fetcher,
		transport:   transport,
		db:          db,
		cleanupCtrl: cleanupCtrl,
		downloadDir: cfg.DownloadDir,
		baseURL:     cfg.BaseURL,
		logger:      logger,
	}
}

// Execute runs a job to completion: invokes the extraction engine, delivers
// the artifact as a link (always) and inline (when small), and arms cleanup.
// Failures are reported to the chat; nothing is retried.
func (c *DownloadController) Execute(ctx context.Context, chatID int64, job *models.DownloadJob) {
	selector := job.Selector()

	c.logger.WithFields(logrus.Fields{
		"chat_id":  chatID,
		"url":      job.SourceURL,
		"selector": selector,
	}).Info("Executing download job")

	record := &models.Job{
		ChatID:    chatID,
		SourceURL: job.SourceURL,
		Selector:  selector,
		Status:    models.JobStatusRunning,
	}
	if err := c.db.CreateJob(record); err != nil {
		c.logger.WithError(err).Error("Failed to record job")
	}

	opts := ytdlp.FetchOptions{
		Selector:       selector,
		OutputTemplate: c.outputTemplate(job),
	}
	if job.TimeRange != nil {
		opts.StartSeconds = job.TimeRange.StartSeconds
		opts.EndSeconds = job.TimeRange.EndSeconds
	}

	result, err := c.fetcher.Fetch(ctx, job.SourceURL, opts)
	if err != nil {
		c.failJob(record, err)
		c.reportFailure(chatID, job, err)
		return
	}

	artifact, err := c.resolveArtifact(job, result)
	if err != nil {
		c.failJob(record, err)
		c.reportFailure(chatID, job, err)
		return
	}

	c.completeJob(record, artifact)

	// The link is the durable reference; it always goes out, even when the
	// artifact is also delivered inline.
	c.sendLink(chatID, artifact)
	if artifact.SizeBytes < inlineSizeLimit {
		c.sendInline(chatID, artifact)
	}

	c.cleanupCtrl.ScheduleCleanup(artifact.FilePath)
}

// outputTemplate derives the per-job storage layout. The folder name embeds
// the selector, the fetch-time content id, and both range bounds (absent
// bounds render empty), so distinct jobs never collide and a retry of the
// same job lands in the same folder.
func (c *DownloadController) outputTemplate(job *models.DownloadJob) string {
	start, end := "", ""
	if job.TimeRange != nil {
		if job.TimeRange.StartSeconds != nil {
			start = strconv.Itoa(*job.TimeRange.StartSeconds)
		}
		if job.TimeRange.EndSeconds != nil {
			end = strconv.Itoa(*job.TimeRange.EndSeconds)
		}
	}
	folder := sanitizeSelector(job.Selector()) + contentIDTemplate + start + end
	return filepath.Join(c.downloadDir, folder, outputFileTemplate)
}

func sanitizeSelector(selector string) string {
	return selectorSanitizer.ReplaceAllString(selector, "_")
}

func (c *DownloadController) resolveArtifact(job *models.DownloadJob, result *ytdlp.FetchResult) (*models.ArtifactRecord, error) {
	info, err := os.Stat(result.FilePath)
	if err != nil {
		return nil, fmt.Errorf("downloaded file missing: %w", err)
	}

	return &models.ArtifactRecord{
		FilePath:    result.FilePath,
		Folder:      filepath.Base(filepath.Dir(result.FilePath)),
		Title:       result.Title,
		SizeBytes:   info.Size(),
		IsAudioOnly: job.AudioOnly,
	}, nil
}

func (c *DownloadController) sendLink(chatID int64, artifact *models.ArtifactRecord) {
	link := fmt.Sprintf("%s/files/%s", c.baseURL, artifact.Folder)
	text := fmt.Sprintf("[%s](%s)", utils.EscapeMarkdownV2(artifact.Title), utils.EscapeMarkdownV2(link))
	c.transport.ReplyMarkdown(chatID, text)
}

func (c *DownloadController) sendInline(chatID int64, artifact *models.ArtifactRecord) {
	var err error
	if artifact.IsAudioOnly {
		err = c.transport.SendAudio(chatID, artifact.FilePath, artifact.Title)
	} else {
		err = c.transport.SendVideo(chatID, artifact.FilePath, artifact.Title)
	}
	if err != nil {
		// The link already went out; inline delivery is best-effort.
		c.logger.WithError(err).WithField("file", artifact.FilePath).Warn("Inline delivery failed")
	}
}

// reportFailure turns an execution error into a chat reply, keeping an
// unrecognized selector distinguishable from a genuine transfer failure.
func (c *DownloadController) reportFailure(chatID int64, job *models.DownloadJob, err error) {
	kind := job.MediaKind()
	if errors.Is(err, ytdlp.ErrFormatUnavailable) {
		c.transport.Reply(chatID, fmt.Sprintf("Failed to download %s: format %q is not recognized by the extractor", kind, job.PrimarySelector))
		return
	}
	c.transport.Reply(chatID, fmt.Sprintf("Failed to download %s: %v", kind, err))
}

func (c *DownloadController) failJob(record *models.Job, err error) {
	c.logger.WithError(err).WithFields(logrus.Fields{
		"chat_id":  record.ChatID,
		"selector": record.Selector,
	}).Error("Download job failed")

	record.Status = models.JobStatusFailed
	record.FailureReason = err.Error()
	if dbErr := c.db.UpdateJob(record); dbErr != nil {
		c.logger.WithError(dbErr).Error("Failed to update job record")
	}
}

func (c *DownloadController) completeJob(record *models.Job, artifact *models.ArtifactRecord) {
	now := time.Now()
	record.Status = models.JobStatusCompleted
	record.Folder = artifact.Folder
	record.Title = artifact.Title
	record.FilePath = artifact.FilePath
	record.SizeBytes = artifact.SizeBytes
	record.CompletedAt = &now
	if err := c.db.UpdateJob(record); err != nil {
		c.logger.WithError(err).Error("Failed to update job record")
	}

	c.logger.WithFields(logrus.Fields{
		"chat_id": record.ChatID,
		"title":   artifact.Title,
		"size":    artifact.SizeBytes,
		"folder":  artifact.Folder,
	}).Info("Download job completed")
}
