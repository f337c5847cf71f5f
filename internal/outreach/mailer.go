package outreach

import (
	"context"

	"resume-builder-backend/internal/shared/telemetry"
)

// Email is one outbound message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers one email. Any returned error counts as a delivery failure
// for the target it belongs to.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer logs instead of sending. It is the dev fallback when no real
// delivery backend is configured.
type LogMailer struct{}

// Send logs the message and reports success.
func (LogMailer) Send(ctx context.Context, email Email) error {
	telemetry.Info("mailer.log_send", map[string]any{
		"to":      email.To,
		"subject": email.Subject,
		"bytes":   len(email.HTML),
	})
	return nil
}

var _ Mailer = LogMailer{}
