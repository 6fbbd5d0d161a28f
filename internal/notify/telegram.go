package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramSink delivers reminders as Telegram messages. The user ID is the
// chat ID. Telegram has no notification-slot semantics, so the notification
// ID only travels in the logs.
type TelegramSink struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewTelegramSink creates a sink over an authorized bot client.
func NewTelegramSink(bot *tgbotapi.BotAPI, log *zap.Logger) *TelegramSink {
	return &TelegramSink{bot: bot, log: log}
}

// Send posts the reminder to the user's chat.
func (s *TelegramSink) Send(_ context.Context, userID int64, notificationID uint32, title, body string) error {
	msg := tgbotapi.NewMessage(userID, fmt.Sprintf("%s\n\n%s", title, body))
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	s.log.Debug("telegram reminder delivered",
		zap.Int64("chat", userID),
		zap.Uint32("notification_id", notificationID))
	return nil
}
