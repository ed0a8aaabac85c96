package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// AlertConfig holds per-project deviation alerting configuration.
// A project may have several active configurations (one per watching user);
// each one carries its own thresholds and channel toggles.
type AlertConfig struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	TenantID  string `json:"tenant_id,omitempty"`

	// Deviation percentage thresholds, strictly increasing.
	ThresholdLow      float64 `json:"threshold_low"`
	ThresholdMedium   float64 `json:"threshold_medium"`
	ThresholdHigh     float64 `json:"threshold_high"`
	ThresholdCritical float64 `json:"threshold_critical"`

	NotifyDashboard bool   `json:"notify_dashboard"`
	NotifyEmail     bool   `json:"notify_email"`
	NotifyWebhook   bool   `json:"notify_webhook"`
	WebhookURL      string `json:"webhook_url,omitempty"`

	PerCategory bool `json:"per_category"`
	PerStage    bool `json:"per_stage"`

	CheckInterval time.Duration `json:"check_interval"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// DefaultAlertConfig returns a configuration with the standard thresholds.
func DefaultAlertConfig(projectID, userID string) *AlertConfig {
	now := time.Now()
	return &AlertConfig{
		ProjectID:         projectID,
		UserID:            userID,
		ThresholdLow:      5,
		ThresholdMedium:   10,
		ThresholdHigh:     15,
		ThresholdCritical: 25,
		NotifyDashboard:   true,
		PerCategory:       true,
		CheckInterval:     24 * time.Hour,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate rejects configurations that could never evaluate consistently.
func (c *AlertConfig) Validate() error {
	if c.ProjectID == "" {
		return errors.New("project id is required")
	}
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	if c.ThresholdLow <= 0 {
		return errors.New("low threshold must be positive")
	}
	if !(c.ThresholdLow < c.ThresholdMedium &&
		c.ThresholdMedium < c.ThresholdHigh &&
		c.ThresholdHigh < c.ThresholdCritical) {
		return errors.New("thresholds must be strictly increasing: low < medium < high < critical")
	}
	if c.NotifyWebhook {
		if c.WebhookURL == "" {
			return errors.New("webhook URL is required when webhook notifications are enabled")
		}
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid webhook URL: %s", c.WebhookURL)
		}
	}
	if c.CheckInterval < 0 {
		return errors.New("check interval must not be negative")
	}
	return nil
}

// SeverityFor maps a deviation percentage to a severity tier, evaluating
// thresholds from highest to lowest. Returns false when no threshold is met.
func (c *AlertConfig) SeverityFor(pct float64) (Severity, bool) {
	switch {
	case pct >= c.ThresholdCritical:
		return SeverityCritical, true
	case pct >= c.ThresholdHigh:
		return SeverityHigh, true
	case pct >= c.ThresholdMedium:
		return SeverityMedium, true
	case pct >= c.ThresholdLow:
		return SeverityLow, true
	default:
		return "", false
	}
}
