package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/config"
)

const updateTimeoutSeconds = 60

// Client wraps the Telegram Bot API
type Client struct {
	api    *tgbotapi.BotAPI
	logger *logrus.Logger
}

// NewClient creates a new Telegram client and authorizes the bot
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}

	logger.WithField("username", api.Self.UserName).Info("Telegram bot authorized")

	return &Client{api: api, logger: logger}, nil
}

// Updates returns the long-polling update channel
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds
	return c.api.GetUpdatesChan(u)
}

// Reply sends a plain text message to a chat
func (c *Client) Reply(chatID int64, text string) {
	c.send(tgbotapi.NewMessage(chatID, text))
}

// ReplyMarkdown sends a MarkdownV2 message to a chat. The caller is
// responsible for escaping reserved characters.
func (c *Client) ReplyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	c.send(msg)
}

// ReplyKeyboard sends a message with a one-time reply keyboard built from the
// given choices, rowWidth buttons per row.
func (c *Client) ReplyKeyboard(chatID int64, text string, choices []string, rowWidth int) {
	if rowWidth < 1 {
		rowWidth = 1
	}

	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, choice := range choices {
		row = append(row, tgbotapi.NewKeyboardButton(choice))
		if len(row) == rowWidth {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	markup := tgbotapi.NewOneTimeReplyKeyboard(rows...)
	markup.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	c.send(msg)
}

// SendVideo pushes a video file inline into the chat
func (c *Client) SendVideo(chatID int64, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	if _, err := c.api.Send(video); err != nil {
		return fmt.Errorf("failed to send video: %w", err)
	}
	return nil
}

// SendAudio pushes an audio file inline into the chat
func (c *Client) SendAudio(chatID int64, path, title string) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Title = title
	if _, err := c.api.Send(audio); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

func (c *Client) send(msg tgbotapi.MessageConfig) {
	if _, err := c.api.Send(msg); err != nil {
		c.logger.WithError(err).WithField("chat_id", msg.ChatID).Error("Failed to send message")
	}
}
