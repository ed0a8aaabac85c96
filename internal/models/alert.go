// Package models defines domain models for ObraGuard.
package models

import "time"

// Severity represents the deviation alert severity tier.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AlertStatus represents the lifecycle state of a deviation alert.
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "ACTIVE"
	AlertStatusResolved AlertStatus = "RESOLVED"
	AlertStatusIgnored  AlertStatus = "IGNORED"
)

// Alert represents one detected budget deviation on a project.
type Alert struct {
	ID           string   `json:"id"`
	ProjectID    string   `json:"project_id"`
	TenantID     string   `json:"tenant_id,omitempty"`
	Severity     Severity `json:"severity"`
	DeviationPct float64  `json:"deviation_pct"`
	Budgeted     float64  `json:"budgeted"`
	Realized     float64  `json:"realized"`
	// DeviationAmount is realized minus budgeted; negative when under budget.
	DeviationAmount float64     `json:"deviation_amount"`
	Category        string      `json:"category,omitempty"`
	Stage           string      `json:"stage,omitempty"`
	Description     string      `json:"description"`
	Status          AlertStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ParseSeverity converts a string to Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), true
	default:
		return "", false
	}
}

// ParseAlertStatus converts a string to AlertStatus.
func ParseAlertStatus(s string) (AlertStatus, bool) {
	switch AlertStatus(s) {
	case AlertStatusActive, AlertStatusResolved, AlertStatusIgnored:
		return AlertStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s AlertStatus) Terminal() bool {
	return s == AlertStatusResolved || s == AlertStatusIgnored
}
