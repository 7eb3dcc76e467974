package email

import (
	"context"
	"log/slog"
)

// logSender writes outbound mail to the log instead of delivering it.
// Meant for development only: it logs recipient and subject, never the
// body, since bodies carry reset and verification tokens.
type logSender struct {
	log *slog.Logger
}

// NewLogSender creates a development Sender backed by the given logger.
func NewLogSender(log *slog.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "email dispatched (dev mode, not delivered)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
	)
	return nil
}
