package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/obraguard/obraguard/internal/models"
)

type sqliteHistoryRepo struct {
	db *sql.DB
}

// execer abstracts *sql.DB and *sql.Tx so history entries can be appended
// inside the same transaction as the transition they record.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *sqliteHistoryRepo) Append(ctx context.Context, entry *models.HistoryEntry) error {
	return appendHistory(ctx, r.db, entry)
}

func appendHistory(ctx context.Context, ex execer, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO alert_history (id, alert_id, project_id, tenant_id, action,
			severity, deviation_pct, budgeted, realized, deviation_amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		entry.ID, entry.AlertID, entry.ProjectID, nullString(entry.TenantID),
		entry.Action, entry.Severity, entry.DeviationPct,
		entry.Budgeted, entry.Realized, entry.DeviationAmount,
		nullString(entry.Note), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append alert history: %w", err)
	}
	return nil
}

const historyColumns = `id, alert_id, project_id, tenant_id, action,
	severity, deviation_pct, budgeted, realized, deviation_amount, note, created_at`

func (r *sqliteHistoryRepo) ListByAlert(ctx context.Context, alertID string) ([]*models.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM alert_history
		WHERE alert_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("query alert history: %w", err)
	}
	defer rows.Close()
	return scanHistories(rows)
}

func (r *sqliteHistoryRepo) ListByProject(ctx context.Context, projectID string, limit int) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + historyColumns + ` FROM alert_history
		WHERE project_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("query project history: %w", err)
	}
	defer rows.Close()
	return scanHistories(rows)
}

func scanHistories(rows *sql.Rows) ([]*models.HistoryEntry, error) {
	var entries []*models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var tenant, note sql.NullString
		err := rows.Scan(
			&e.ID, &e.AlertID, &e.ProjectID, &tenant, &e.Action,
			&e.Severity, &e.DeviationPct, &e.Budgeted, &e.Realized,
			&e.DeviationAmount, &note, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.TenantID = tenant.String
		e.Note = note.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
