package notifier

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CommandHandler is called when a user command is received. An empty reply
// sends nothing.
type CommandHandler func(ctx context.Context, command string) string

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	t.handler = handler
	t.log.Info("telegram polling started")
	t.bot.Start(ctx)
	t.log.Info("telegram polling stopped")
}

func (t *TelegramNotifier) onUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.Text == "" || t.handler == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	chatID := update.Message.Chat.ID
	t.log.WithField("chat_id", chatID).WithField("command", text).Info("received command")

	reply := t.handler(ctx, text)
	if reply == "" {
		return
	}
	if err := t.sendTo(ctx, chatID, reply); err != nil {
		t.log.WithError(err).Error("send reply failed")
	}
}
