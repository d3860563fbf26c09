// Package emailsender implements the email side-channel. The log-backed
// sender stands in for a real provider such as SendGrid or Mailgun.
package emailsender

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/domain"
)

// LogSender writes the email to the structured log instead of sending it.
type LogSender struct{}

// NewLogSender returns the log-backed sender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the email details and reports success.
func (s *LogSender) Send(ctx context.Context, n domain.Notification) error {
	zerolog.Ctx(ctx).Info().
		Str("to", n.Recipient).
		Str("subject", n.Subject).
		Str("body", n.Message).
		Msg("sending email")

	return nil
}
