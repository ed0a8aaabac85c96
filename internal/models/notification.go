package models

import (
	"errors"
	"time"
)

// Channel is a notification delivery mechanism.
type Channel string

const (
	ChannelDashboard Channel = "DASHBOARD"
	ChannelEmail     Channel = "EMAIL"
	ChannelWebhook   Channel = "WEBHOOK"
)

// NotificationStatus represents the delivery state of a notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationError   NotificationStatus = "ERROR"
	NotificationRead    NotificationStatus = "READ"
)

// DefaultMaxAttempts bounds delivery retries per notification.
const DefaultMaxAttempts = 3

// WebhookBody is the wire shape POSTed to webhook consumers. Field names are
// part of the public contract and must not change.
type WebhookBody struct {
	AlertType           Severity `json:"alert_type"`
	DeviationPercentage float64  `json:"deviation_percentage"`
	DeviationAmount     float64  `json:"deviation_amount"`
	ObraID              string   `json:"obra_id"`
	Timestamp           string   `json:"timestamp"`
}

// DashboardPayload carries the data an in-app notification renders from.
type DashboardPayload struct {
	ProjectID       string  `json:"project_id"`
	Category        string  `json:"category,omitempty"`
	Stage           string  `json:"stage,omitempty"`
	DeviationAmount float64 `json:"deviation_amount"`
}

// EmailPayload carries channel data for mail delivery.
type EmailPayload struct {
	Template string   `json:"template"`
	Priority Severity `json:"priority"`
}

// WebhookPayload carries the target URL and the body to POST.
type WebhookPayload struct {
	URL  string      `json:"url"`
	Body WebhookBody `json:"body"`
}

// Payload holds exactly one channel-specific payload variant. Using one
// pointer field per channel keeps dispatcher logic exhaustive instead of
// digging through an open-ended map.
type Payload struct {
	Dashboard *DashboardPayload `json:"dashboard,omitempty"`
	Email     *EmailPayload     `json:"email,omitempty"`
	Webhook   *WebhookPayload   `json:"webhook,omitempty"`
	// LastError records the most recent delivery failure, if any.
	LastError string `json:"last_error,omitempty"`
}

// Notification is one (alert, channel) delivery record.
type Notification struct {
	ID          string             `json:"id"`
	AlertID     string             `json:"alert_id"`
	UserID      string             `json:"user_id"`
	TenantID    string             `json:"tenant_id,omitempty"`
	Channel     Channel            `json:"channel"`
	Status      NotificationStatus `json:"status"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Payload     Payload            `json:"payload"`
	Attempts    int                `json:"attempts"`
	MaxAttempts int                `json:"max_attempts"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
	ReadAt      *time.Time         `json:"read_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ParseChannel converts a string to Channel.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelDashboard, ChannelEmail, ChannelWebhook:
		return Channel(s), true
	default:
		return "", false
	}
}

// Validate checks internal consistency before persisting.
func (n *Notification) Validate() error {
	if n.AlertID == "" {
		return errors.New("alert id is required")
	}
	if _, ok := ParseChannel(string(n.Channel)); !ok {
		return errors.New("unknown notification channel")
	}
	if n.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	if n.Attempts > n.MaxAttempts {
		return errors.New("attempts exceed max attempts")
	}
	switch n.Channel {
	case ChannelDashboard:
		if n.Payload.Dashboard == nil {
			return errors.New("dashboard notification requires dashboard payload")
		}
	case ChannelEmail:
		if n.Payload.Email == nil {
			return errors.New("email notification requires email payload")
		}
	case ChannelWebhook:
		if n.Payload.Webhook == nil || n.Payload.Webhook.URL == "" {
			return errors.New("webhook notification requires webhook payload with URL")
		}
	}
	return nil
}
