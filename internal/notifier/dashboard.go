package notifier

import (
	"context"

	"github.com/obraguard/obraguard/internal/models"
)

// DashboardSender "delivers" in-app notifications. Delivery for this channel
// means being visible in the store, so sending is a no-op; the dispatcher's
// SENT transition is the whole delivery.
type DashboardSender struct{}

// NewDashboardSender creates a dashboard sender.
func NewDashboardSender() *DashboardSender {
	return &DashboardSender{}
}

// Channel returns DASHBOARD.
func (s *DashboardSender) Channel() models.Channel {
	return models.ChannelDashboard
}

// Send succeeds immediately.
func (s *DashboardSender) Send(ctx context.Context, n *models.Notification) error {
	return nil
}
