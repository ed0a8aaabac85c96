package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/obraguard/obraguard/internal/models"
	"github.com/obraguard/obraguard/internal/storage"
)

// Fanout materializes one PENDING notification per enabled channel per
// active configuration. It performs no delivery.
type Fanout struct {
	storage storage.Storage
}

// NewFanout creates a fan-out over the given store.
func NewFanout(store storage.Storage) *Fanout {
	return &Fanout{storage: store}
}

// FanOut builds the notification records for one alert and inserts them in a
// single batch. Disabled channels produce no record at all. Returns the
// number of notifications created.
func (f *Fanout) FanOut(ctx context.Context, alert *models.Alert, configs []*models.AlertConfig) (int, error) {
	var notifications []*models.Notification

	for _, cfg := range configs {
		if !cfg.Active {
			continue
		}
		notifications = append(notifications, buildNotifications(alert, cfg)...)
	}

	if len(notifications) == 0 {
		return 0, nil
	}
	if err := f.storage.Notifications().CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("insert notifications for alert %s: %w", alert.ID, err)
	}
	return len(notifications), nil
}

// buildNotifications renders the per-channel records for one configuration.
func buildNotifications(alert *models.Alert, cfg *models.AlertConfig) []*models.Notification {
	var out []*models.Notification

	base := func(channel models.Channel) *models.Notification {
		return &models.Notification{
			AlertID:     alert.ID,
			UserID:      cfg.UserID,
			TenantID:    cfg.TenantID,
			Channel:     channel,
			Status:      models.NotificationPending,
			MaxAttempts: models.DefaultMaxAttempts,
			CreatedAt:   time.Now(),
		}
	}

	if cfg.NotifyDashboard {
		n := base(models.ChannelDashboard)
		n.Title = fmt.Sprintf("%s budget deviation alert", alert.Severity)
		n.Body = fmt.Sprintf("Deviation of %.2f%% detected on the project", alert.DeviationPct)
		n.Payload.Dashboard = &models.DashboardPayload{
			ProjectID:       alert.ProjectID,
			Category:        alert.Category,
			Stage:           alert.Stage,
			DeviationAmount: alert.DeviationAmount,
		}
		out = append(out, n)
	}

	if cfg.NotifyEmail {
		n := base(models.ChannelEmail)
		n.Title = "ObraGuard - Budget Deviation Alert"
		n.Body = fmt.Sprintf("A deviation of %.2f%% was detected. Deviation amount: %.2f",
			alert.DeviationPct, alert.DeviationAmount)
		n.Payload.Email = &models.EmailPayload{
			Template: "budget_deviation",
			Priority: alert.Severity,
		}
		out = append(out, n)
	}

	if cfg.NotifyWebhook && cfg.WebhookURL != "" {
		n := base(models.ChannelWebhook)
		n.Title = "Webhook Alert"
		n.Body = "Budget deviation detected"
		n.Payload.Webhook = &models.WebhookPayload{
			URL: cfg.WebhookURL,
			Body: models.WebhookBody{
				AlertType:           alert.Severity,
				DeviationPercentage: alert.DeviationPct,
				DeviationAmount:     alert.DeviationAmount,
				ObraID:              alert.ProjectID,
				Timestamp:           time.Now().UTC().Format(time.RFC3339),
			},
		}
		out = append(out, n)
	}

	return out
}
