package models

// AlertStats summarizes the alert population, optionally scoped to a project.
type AlertStats struct {
	Total         int64                 `json:"total"`
	BySeverity    map[Severity]int64    `json:"by_severity"`
	ByStatus      map[AlertStatus]int64 `json:"by_status"`
	ProjectCount  int64                 `json:"projects_with_alerts"`
	MeanDeviation float64               `json:"mean_deviation_pct"`
	MaxDeviation  float64               `json:"max_deviation_pct"`
}
