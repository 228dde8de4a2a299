package verification

import (
	"context"
	"log/slog"
)

// LogSender is the default Sender when no delivery provider is configured.
// It records the dispatch so environments without an email/SMS provider still
// exercise the full verification path.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-only verification sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerification(ctx context.Context, contact string) error {
	s.logger.InfoContext(ctx, "verification_dispatched", "contact", contact)
	return nil
}

var _ Sender = (*LogSender)(nil)
