// Package notify delivers user notifications over external channels.
package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailSender sends transactional email through Resend.
type EmailSender struct {
	client *resend.Client
	from   string
}

// NewEmailSender returns nil when no API key is configured.
func NewEmailSender(apiKey, from string) *EmailSender {
	if apiKey == "" {
		return nil
	}
	return &EmailSender{client: resend.NewClient(apiKey), from: from}
}

// Configured reports whether the sender can deliver mail.
func (s *EmailSender) Configured() bool {
	return s != nil && s.client != nil && s.from != ""
}

// Send delivers one HTML email.
func (s *EmailSender) Send(ctx context.Context, to, subject, html string) error {
	if !s.Configured() {
		return fmt.Errorf("email sender not configured")
	}
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
