package controllers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/models"
	"github.com/amaumene/grabarr/internal/services/ytdlp"
	"github.com/amaumene/grabarr/internal/utils"
)

const (
	formatIDToken = "ID:"

	withTimestampsChoice    = "With timestamps"
	withoutTimestampsChoice = "Without timestamps"

	timestampPrompt = "Do you want to download with timestamps?"
	formatPrompt    = "Choose a video format:"
)

// continuation consumes the next message from a chat
type continuation func(text string)

// ConversationController drives the per-chat selection flow: URL received,
// optional timestamp confirmation, format choice, job dispatch. At most one
// continuation is pending per chat; registering a new one replaces it.
type ConversationController struct {
	prober    Prober
	transport Transport
	runner    JobRunner
	blocklist *utils.Blocklist
	logger    *logrus.Logger

	mu      sync.Mutex
	pending map[int64]continuation
}

// NewConversationController creates a new conversation controller
func NewConversationController(prober Prober, transport Transport, runner JobRunner, blocklist *utils.Blocklist, logger *logrus.Logger) *ConversationController {
	return &ConversationController{
		prober:    prober,
		transport: transport,
		runner:    runner,
		blocklist: blocklist,
		logger:    logger,
		pending:   make(map[int64]continuation),
	}
}

// HandleMessage routes one inbound text message. A pending continuation
// consumes the message before any other routing; otherwise a message carrying
// an explicit format id bypasses the catalog flow, and anything else is
// treated as a new URL submission.
func (c *ConversationController) HandleMessage(ctx context.Context, chatID int64, text string) {
	if cont := c.takeContinuation(chatID); cont != nil {
		cont(text)
		return
	}

	if strings.Contains(text, formatIDToken) {
		c.handleFormatID(ctx, chatID, text)
		return
	}

	c.handleURL(ctx, chatID, text)
}

// HandleList serves the /list command: every probed format, unfiltered,
// without entering the selection flow.
func (c *ConversationController) HandleList(ctx context.Context, chatID int64, args string) {
	sourceURL := strings.TrimSpace(args)
	if sourceURL == "" {
		c.transport.Reply(chatID, "Usage: /list <url>")
		return
	}

	c.transport.Reply(chatID, "Fetching available formats...")

	info, err := c.prober.Probe(ctx, sourceURL)
	if err != nil {
		c.transport.Reply(chatID, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	lines := ytdlp.FormatLines(info.Formats)
	c.transport.ReplyMarkdown(chatID, "Available formats:\n"+utils.EscapeMarkdownV2(strings.Join(lines, "\n")))
}

// handleURL starts a new flow from Idle. Any failure replies the error and
// leaves the chat in Idle; no continuation is registered.
func (c *ConversationController) handleURL(ctx context.Context, chatID int64, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	sourceURL := fields[0]

	if c.blocklist != nil {
		if blocked, term := c.blocklist.IsBlocked(sourceURL); blocked {
			c.logger.WithFields(logrus.Fields{
				"chat_id": chatID,
				"url":     sourceURL,
				"term":    term,
			}).Warn("Refusing blocklisted source")
			c.transport.Reply(chatID, "This source is not allowed.")
			return
		}
	}

	timeRange, err := parseTimeRange(text)
	if err != nil {
		c.transport.Reply(chatID, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	c.transport.Reply(chatID, "Analyzing the video...")

	info, err := c.prober.Probe(ctx, sourceURL)
	if err != nil {
		c.transport.Reply(chatID, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	pending := &models.PendingRequest{
		SourceURL:          sourceURL,
		AudioTrackSelector: ytdlp.AudioOnlySelector,
		TimeRange:          timeRange,
		Catalog:            ytdlp.ChoiceStrings(ytdlp.BuildCatalog(info.Formats)),
	}

	if timeRange != nil {
		c.transport.ReplyKeyboard(chatID, timestampPrompt, []string{withTimestampsChoice, withoutTimestampsChoice}, 2)
		c.register(chatID, func(text string) {
			c.confirmTimestamps(ctx, chatID, pending, text)
		})
		return
	}

	c.promptFormat(ctx, chatID, pending)
}

// confirmTimestamps resolves the AwaitingTimestampConfirmation step. Anything
// other than the affirmative label falls through to the no-timestamps branch.
func (c *ConversationController) confirmTimestamps(ctx context.Context, chatID int64, pending *models.PendingRequest, text string) {
	if text != withTimestampsChoice {
		pending.TimeRange = nil
	}
	c.promptFormat(ctx, chatID, pending)
}

func (c *ConversationController) promptFormat(ctx context.Context, chatID int64, pending *models.PendingRequest) {
	c.transport.ReplyKeyboard(chatID, formatPrompt, pending.Catalog, 3)
	c.register(chatID, func(text string) {
		c.chooseFormat(ctx, chatID, pending, text)
	})
}

// chooseFormat resolves the AwaitingFormat step and dispatches the job. The
// encoding id rides as the trailing ID: token of the presented choice; an
// unrecognized choice is forwarded verbatim and fails in the executor.
func (c *ConversationController) chooseFormat(ctx context.Context, chatID int64, pending *models.PendingRequest, text string) {
	job := &models.DownloadJob{
		SourceURL:       pending.SourceURL,
		PrimarySelector: extractSelector(text),
		TimeRange:       pending.TimeRange,
	}
	if job.PrimarySelector == ytdlp.AudioOnlySelector {
		job.AudioOnly = true
	} else {
		job.AudioTrackSelector = pending.AudioTrackSelector
	}

	c.transport.Reply(chatID, "Downloading the video from the specified format...")
	c.runner.Execute(ctx, chatID, job)
}

// handleFormatID handles a message that pastes an explicit format id,
// constructing a job directly from Idle with no audio merge.
func (c *ConversationController) handleFormatID(ctx context.Context, chatID int64, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	timeRange, err := parseTimeRange(text)
	if err != nil {
		c.transport.Reply(chatID, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	job := &models.DownloadJob{
		SourceURL:       fields[0],
		PrimarySelector: extractSelector(text),
		TimeRange:       timeRange,
	}

	c.transport.Reply(chatID, "Downloading the video from the specified format...")
	c.runner.Execute(ctx, chatID, job)
}

// register installs the continuation for a chat, atomically replacing any
// earlier one. Stale continuations are dropped, never invoked.
func (c *ConversationController) register(chatID int64, cont continuation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[chatID] = cont
}

func (c *ConversationController) takeContinuation(chatID int64) continuation {
	c.mu.Lock()
	defer c.mu.Unlock()
	cont := c.pending[chatID]
	if cont != nil {
		delete(c.pending, chatID)
	}
	return cont
}

// extractSelector pulls the encoding id out of a choice string. Text without
// an ID: token passes through verbatim.
func extractSelector(text string) string {
	idx := strings.LastIndex(text, formatIDToken)
	if idx < 0 {
		return text
	}
	selector := text[idx+len(formatIDToken):]
	if fields := strings.Fields(selector); len(fields) > 0 {
		return fields[0]
	}
	return selector
}

func parseTimeRange(text string) (*models.TimeRange, error) {
	start, err := utils.ParseTimeParam(text, "t")
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseTimeParam(text, "n")
	if err != nil {
		return nil, err
	}
	if start == nil && end == nil {
		return nil, nil
	}
	return &models.TimeRange{StartSeconds: start, EndSeconds: end}, nil
}
