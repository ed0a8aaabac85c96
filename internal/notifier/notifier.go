// Package notifier materializes and delivers alert notifications.
package notifier

import (
	"context"

	"github.com/obraguard/obraguard/internal/models"
)

// Sender is a channel-specific delivery primitive.
type Sender interface {
	// Channel returns the channel this sender delivers on.
	Channel() models.Channel
	// Send delivers one notification. Implementations must be safe for
	// concurrent use.
	Send(ctx context.Context, n *models.Notification) error
}

// Mailer is the external mail collaborator email notifications delegate to.
// Recipient resolution from the user id is the collaborator's concern.
type Mailer interface {
	SendMail(ctx context.Context, userID, subject, body string) error
}
