package email

import (
	"context"

	"github.com/anthonyhasrouny/portfolio/pkg/logger"
)

// ConsoleSender logs messages instead of sending them (development mode).
type ConsoleSender struct {
	logger logger.Logger
}

// NewConsoleSender creates a development sender.
func NewConsoleSender(log logger.Logger) *ConsoleSender {
	return &ConsoleSender{logger: log}
}

// Name implements Sender
func (s *ConsoleSender) Name() string { return "console" }

// Send implements Sender
func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email not sent (console mode)",
		"from", msg.From(),
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
	)
	s.logger.Debug("email body", "text", msg.Text)
	return nil
}
