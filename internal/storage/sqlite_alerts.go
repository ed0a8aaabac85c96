package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/obraguard/obraguard/internal/models"
)

type sqliteAlertRepo struct {
	db      *sql.DB
	history *sqliteHistoryRepo
}

const alertColumns = `id, project_id, tenant_id, severity, deviation_pct,
	budgeted, realized, deviation_amount, category, stage, description,
	status, created_at, updated_at`

func (r *sqliteAlertRepo) CreateWithHistory(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	now := time.Now()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = alert.CreatedAt
	if alert.Status == "" {
		alert.Status = models.AlertStatusActive
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create alert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		alert.ID, alert.ProjectID, nullString(alert.TenantID), alert.Severity,
		alert.DeviationPct, alert.Budgeted, alert.Realized, alert.DeviationAmount,
		alert.Category, alert.Stage, alert.Description, alert.Status,
		alert.CreatedAt, alert.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Another active alert already covers this scope.
			return ErrConflict
		}
		return fmt.Errorf("insert alert: %w", err)
	}

	entry := models.HistoryFromAlert(alert, models.HistoryActionCreated, "")
	if err := appendHistory(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create alert: %w", err)
	}
	return nil
}

func (r *sqliteAlertRepo) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`
	alert, err := scanAlertFrom(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

func (r *sqliteAlertRepo) ListActive(ctx context.Context, projectID, category string) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE project_id = ? AND status = ?`
	args := []any{projectID, models.AlertStatusActive}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC"
	return r.queryAlerts(ctx, query, args...)
}

func (r *sqliteAlertRepo) List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error) {
	var conds []string
	var args []any

	if filter.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.TenantID != "" {
		conds = append(conds, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		conds = append(conds, "severity = ?")
		args = append(args, filter.Severity)
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.Until)
	}

	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return r.queryAlerts(ctx, query, args...)
}

// transitionAction maps a target status to the history action recorded for it.
func transitionAction(from, to models.AlertStatus) (models.HistoryAction, error) {
	switch to {
	case models.AlertStatusResolved:
		if from != models.AlertStatusActive {
			return "", ErrConflict
		}
		return models.HistoryActionResolved, nil
	case models.AlertStatusIgnored:
		if from != models.AlertStatusActive {
			return "", ErrConflict
		}
		return models.HistoryActionIgnored, nil
	case models.AlertStatusActive:
		if !from.Terminal() {
			return "", ErrConflict
		}
		return models.HistoryActionReactivated, nil
	default:
		return "", fmt.Errorf("unknown alert status: %s", to)
	}
}

func (r *sqliteAlertRepo) Transition(ctx context.Context, id string, status models.AlertStatus, note string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`
	alert, err := scanAlertFrom(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get alert for transition: %w", err)
	}

	action, err := transitionAction(alert.Status, status)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		"UPDATE alerts SET status = ?, updated_at = ? WHERE id = ?",
		status, now, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Reactivation lost to a newer active alert in the same scope.
			return ErrConflict
		}
		return fmt.Errorf("update alert status: %w", err)
	}

	alert.Status = status
	entry := models.HistoryFromAlert(alert, action, note)
	entry.CreatedAt = now
	if err := appendHistory(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

func (r *sqliteAlertRepo) MarkVisualized(ctx context.Context, id, note string) error {
	alert, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	entry := models.HistoryFromAlert(alert, models.HistoryActionVisualized, note)
	return appendHistory(ctx, r.db, entry)
}

func (r *sqliteAlertRepo) Stats(ctx context.Context, projectID string) (*models.AlertStats, error) {
	query := `
		SELECT severity, status, deviation_pct, project_id
		FROM alerts
	`
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alert stats: %w", err)
	}
	defer rows.Close()

	stats := &models.AlertStats{
		BySeverity: make(map[models.Severity]int64),
		ByStatus:   make(map[models.AlertStatus]int64),
	}
	projects := make(map[string]struct{})
	var sum float64

	for rows.Next() {
		var severity models.Severity
		var status models.AlertStatus
		var pct float64
		var pid string
		if err := rows.Scan(&severity, &status, &pct, &pid); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Total++
		stats.BySeverity[severity]++
		stats.ByStatus[status]++
		projects[pid] = struct{}{}
		sum += pct
		if pct > stats.MaxDeviation {
			stats.MaxDeviation = pct
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.ProjectCount = int64(len(projects))
	if stats.Total > 0 {
		stats.MeanDeviation = sum / float64(stats.Total)
	}
	return stats, nil
}

func (r *sqliteAlertRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM alerts WHERE status IN (?, ?) AND created_at < ?",
		models.AlertStatusResolved, models.AlertStatusIgnored, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old alerts: %w", err)
	}
	return result.RowsAffected()
}

func (r *sqliteAlertRepo) queryAlerts(ctx context.Context, query string, args ...any) ([]*models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlertFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func scanAlertFrom(s scanner) (*models.Alert, error) {
	var a models.Alert
	var tenant sql.NullString
	err := s.Scan(
		&a.ID, &a.ProjectID, &tenant, &a.Severity, &a.DeviationPct,
		&a.Budgeted, &a.Realized, &a.DeviationAmount, &a.Category, &a.Stage,
		&a.Description, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.TenantID = tenant.String
	return &a, nil
}
