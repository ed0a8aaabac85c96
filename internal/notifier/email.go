package notifier

import (
	"context"
	"fmt"

	"github.com/obraguard/obraguard/internal/models"
)

// EmailSender delivers notifications through an external mail collaborator.
type EmailSender struct {
	mailer Mailer
}

// NewEmailSender creates an email sender over the given mailer.
func NewEmailSender(mailer Mailer) *EmailSender {
	return &EmailSender{mailer: mailer}
}

// Channel returns EMAIL.
func (s *EmailSender) Channel() models.Channel {
	return models.ChannelEmail
}

// Send delegates the rendered title and body to the mail collaborator.
func (s *EmailSender) Send(ctx context.Context, n *models.Notification) error {
	if s.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}
	if n.Payload.Email == nil {
		return fmt.Errorf("notification %s has no email payload", n.ID)
	}
	if err := s.mailer.SendMail(ctx, n.UserID, n.Title, n.Body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
