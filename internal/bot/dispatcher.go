package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/controllers"
	"github.com/amaumene/grabarr/internal/services/telegram"
)

const welcomeText = "Send me a video link and I'll help you download it!"

// Dispatcher binds the conversation controller to the Telegram update stream
type Dispatcher struct {
	client   *telegram.Client
	convCtrl *controllers.ConversationController
	logger   *logrus.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(client *telegram.Client, convCtrl *controllers.ConversationController, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		client:   client,
		convCtrl: convCtrl,
		logger:   logger,
	}
}

// Run consumes updates until the context is cancelled. Each update is handled
// on its own goroutine so one user's long extraction never blocks intake for
// others.
func (d *Dispatcher) Run(ctx context.Context) {
	updates := d.client.Updates()
	d.logger.Info("Message dispatch loop started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Message dispatch loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				d.logger.Warn("Update channel closed")
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go d.handle(ctx, update.Message)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"chat_id": msg.Chat.ID,
				"panic":   r,
			}).Error("Message handler panicked")
		}
	}()

	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			d.client.Reply(chatID, welcomeText)
		case "list":
			d.convCtrl.HandleList(ctx, chatID, msg.CommandArguments())
		default:
			d.client.Reply(chatID, "Unknown command.")
		}
		return
	}

	d.convCtrl.HandleMessage(ctx, chatID, msg.Text)
}
