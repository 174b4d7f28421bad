package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/grabarr/internal/config"
	"github.com/sirupsen/logrus"
)

const probeTimeout = 2 * time.Minute

// ErrFormatUnavailable marks a fetch that failed because the extraction engine
// did not recognize the requested selector, as opposed to a network or disk
// failure.
var ErrFormatUnavailable = errors.New("requested format is not available")

// Format is one encoding the engine can produce for a source
type Format struct {
	ID             string `json:"format_id"`
	FormatNote     string `json:"format_note"`
	Resolution     string `json:"resolution"`
	VCodec         string `json:"vcodec"`
	ACodec         string `json:"acodec"`
	FilesizeApprox int64  `json:"filesize_approx"`
}

// VideoInfo is the metadata returned by a probe
type VideoInfo struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Formats []Format `json:"formats"`
}

// FetchOptions configures one fetch invocation
type FetchOptions struct {
	Selector       string
	OutputTemplate string
	StartSeconds   *int // nil = from start
	EndSeconds     *int // nil = open-ended
}

// FetchResult describes the produced artifact
type FetchResult struct {
	Title    string
	FilePath string
}

// Client invokes the local yt-dlp binary
type Client struct {
	binaryPath    string
	socketTimeout int
	fetchTimeout  time.Duration
	logger        *logrus.Logger
}

// NewClient creates a new extraction engine client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		binaryPath:    cfg.YtdlpPath,
		socketTimeout: cfg.SocketTimeoutSeconds,
		fetchTimeout:  time.Duration(cfg.FetchTimeoutMinutes) * time.Minute,
		logger:        logger,
	}
}

// Probe fetches source metadata without downloading anything
func (c *Client) Probe(ctx context.Context, sourceURL string) (*VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c.logger.WithField("url", sourceURL).Debug("Probing source")

	cmd := exec.CommandContext(ctx, c.binaryPath,
		"-J",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(c.socketTimeout),
		sourceURL,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("probe failed: %s", extractError(stderr.String(), err))
	}

	var info VideoInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"url":     sourceURL,
		"title":   info.Title,
		"formats": len(info.Formats),
	}).Debug("Probe completed")

	return &info, nil
}

// Fetch performs the transfer for one selector and returns the produced file.
// The output template decides the storage folder; the caller derives it so
// that distinct (selector, range) pairs never collide.
func (c *Client) Fetch(ctx context.Context, sourceURL string, opts FetchOptions) (*FetchResult, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	args := []string{
		"-f", opts.Selector,
		"-o", opts.OutputTemplate,
		"--socket-timeout", strconv.Itoa(c.socketTimeout),
		"--no-warnings",
		"--no-simulate",
		"--print", "title",
		"--print", "after_move:filepath",
	}
	if opts.StartSeconds != nil || opts.EndSeconds != nil {
		args = append(args,
			"--download-sections", sectionSpec(opts.StartSeconds, opts.EndSeconds),
			"--force-keyframes-at-cuts",
		)
	}
	args = append(args, sourceURL)

	c.logger.WithFields(logrus.Fields{
		"url":      sourceURL,
		"selector": opts.Selector,
	}).Info("Starting fetch")

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "Requested format is not available") {
			return nil, fmt.Errorf("%w: %q", ErrFormatUnavailable, opts.Selector)
		}
		return nil, fmt.Errorf("fetch failed: %s", extractError(stderr.String(), err))
	}

	// One title line and one filepath line, in --print order.
	lines := nonEmptyLines(out.String())
	if len(lines) < 2 {
		return nil, fmt.Errorf("unexpected yt-dlp output: %q", out.String())
	}

	result := &FetchResult{
		Title:    lines[0],
		FilePath: lines[len(lines)-1],
	}

	c.logger.WithFields(logrus.Fields{
		"title": result.Title,
		"file":  result.FilePath,
	}).Info("Fetch completed")

	return result, nil
}

// sectionSpec renders a yt-dlp --download-sections argument. Bounds pass
// through as given; an absent start is 0, an absent end is open.
func sectionSpec(start, end *int) string {
	s := 0
	if start != nil {
		s = *start
	}
	e := "inf"
	if end != nil {
		e = strconv.Itoa(*end)
	}
	return fmt.Sprintf("*%d-%s", s, e)
}

// extractError prefers yt-dlp's own ERROR line over the bare exit status
func extractError(stderr string, err error) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	if s := strings.TrimSpace(stderr); s != "" {
		return s
	}
	return err.Error()
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
