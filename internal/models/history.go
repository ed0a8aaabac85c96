package models

import "time"

// HistoryAction tags an alert lifecycle transition.
type HistoryAction string

const (
	HistoryActionCreated     HistoryAction = "CREATED"
	HistoryActionVisualized  HistoryAction = "VISUALIZED"
	HistoryActionResolved    HistoryAction = "RESOLVED"
	HistoryActionIgnored     HistoryAction = "IGNORED"
	HistoryActionReactivated HistoryAction = "REACTIVATED"
)

// HistoryEntry is an append-only audit record for one alert transition.
// It snapshots the alert's figures at the time of the action; entries are
// never updated or deleted.
type HistoryEntry struct {
	ID              string        `json:"id"`
	AlertID         string        `json:"alert_id"`
	ProjectID       string        `json:"project_id"`
	TenantID        string        `json:"tenant_id,omitempty"`
	Action          HistoryAction `json:"action"`
	Severity        Severity      `json:"severity"`
	DeviationPct    float64       `json:"deviation_pct"`
	Budgeted        float64       `json:"budgeted"`
	Realized        float64       `json:"realized"`
	DeviationAmount float64       `json:"deviation_amount"`
	Note            string        `json:"note,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// HistoryFromAlert snapshots an alert into a new history entry.
func HistoryFromAlert(a *Alert, action HistoryAction, note string) *HistoryEntry {
	return &HistoryEntry{
		AlertID:         a.ID,
		ProjectID:       a.ProjectID,
		TenantID:        a.TenantID,
		Action:          action,
		Severity:        a.Severity,
		DeviationPct:    a.DeviationPct,
		Budgeted:        a.Budgeted,
		Realized:        a.Realized,
		DeviationAmount: a.DeviationAmount,
		Note:            note,
		CreatedAt:       time.Now(),
	}
}
