package email

import (
	"context"

	"go.uber.org/zap"
)

// Message is an outbound email with tracking metadata.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Metadata map[string]string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes emails to the log instead of delivering them. It is used
// when no provider is configured.
type LogSender struct {
	from   string
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(from string, logger *zap.Logger) *LogSender {
	return &LogSender{from: from, logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Debug("email not delivered; no provider configured",
		zap.String("from", s.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Any("metadata", msg.Metadata),
	)
	return nil
}
