package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink records notifications in the log instead of delivering them.
// Used for dry runs and as a fallback when no delivery channel is configured.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a sink that only logs.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

// Send logs the notification and reports success.
func (s *LogSink) Send(_ context.Context, userID int64, notificationID uint32, title, body string) error {
	s.log.Info("notification (dry run)",
		zap.Int64("user", userID),
		zap.Uint32("notification_id", notificationID),
		zap.String("title", title),
		zap.String("body", body))
	return nil
}
