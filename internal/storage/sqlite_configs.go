package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/obraguard/obraguard/internal/models"
)

type sqliteConfigRepo struct {
	db *sql.DB
}

const configColumns = `id, project_id, user_id, tenant_id,
	threshold_low, threshold_medium, threshold_high, threshold_critical,
	notify_dashboard, notify_email, notify_webhook, webhook_url,
	per_category, per_stage, check_interval_ns, active, created_at, updated_at`

func (r *sqliteConfigRepo) Save(ctx context.Context, cfg *models.AlertConfig) error {
	query := `
		INSERT INTO alert_configs (` + configColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, user_id) DO UPDATE SET
			threshold_low = excluded.threshold_low,
			threshold_medium = excluded.threshold_medium,
			threshold_high = excluded.threshold_high,
			threshold_critical = excluded.threshold_critical,
			notify_dashboard = excluded.notify_dashboard,
			notify_email = excluded.notify_email,
			notify_webhook = excluded.notify_webhook,
			webhook_url = excluded.webhook_url,
			per_category = excluded.per_category,
			per_stage = excluded.per_stage,
			check_interval_ns = excluded.check_interval_ns,
			active = excluded.active,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		cfg.ID, cfg.ProjectID, cfg.UserID, nullString(cfg.TenantID),
		cfg.ThresholdLow, cfg.ThresholdMedium, cfg.ThresholdHigh, cfg.ThresholdCritical,
		boolToInt(cfg.NotifyDashboard), boolToInt(cfg.NotifyEmail), boolToInt(cfg.NotifyWebhook),
		nullString(cfg.WebhookURL),
		boolToInt(cfg.PerCategory), boolToInt(cfg.PerStage),
		cfg.CheckInterval.Nanoseconds(), boolToInt(cfg.Active),
		cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save alert config: %w", err)
	}
	return nil
}

func (r *sqliteConfigRepo) GetByID(ctx context.Context, id string) (*models.AlertConfig, error) {
	query := `SELECT ` + configColumns + ` FROM alert_configs WHERE id = ?`
	return r.scanConfig(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteConfigRepo) GetForProjectUser(ctx context.Context, projectID, userID string) (*models.AlertConfig, error) {
	query := `SELECT ` + configColumns + ` FROM alert_configs WHERE project_id = ? AND user_id = ?`
	return r.scanConfig(r.db.QueryRowContext(ctx, query, projectID, userID))
}

func (r *sqliteConfigRepo) ListActive(ctx context.Context, projectID string) ([]*models.AlertConfig, error) {
	query := `SELECT ` + configColumns + ` FROM alert_configs
		WHERE project_id = ? AND active = 1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("query active configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.AlertConfig
	for rows.Next() {
		cfg, err := r.scanConfigRow(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (r *sqliteConfigRepo) Deactivate(ctx context.Context, projectID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE alert_configs SET active = 0, updated_at = ? WHERE project_id = ? AND user_id = ?",
		time.Now(), projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate config: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *sqliteConfigRepo) scanConfig(row *sql.Row) (*models.AlertConfig, error) {
	cfg, err := scanConfigFrom(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	return cfg, nil
}

func (r *sqliteConfigRepo) scanConfigRow(rows *sql.Rows) (*models.AlertConfig, error) {
	cfg, err := scanConfigFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("scan config row: %w", err)
	}
	return cfg, nil
}

func scanConfigFrom(s scanner) (*models.AlertConfig, error) {
	var cfg models.AlertConfig
	var tenant, webhookURL sql.NullString
	var dashboard, email, webhook, perCategory, perStage, active int
	var intervalNS int64

	err := s.Scan(
		&cfg.ID, &cfg.ProjectID, &cfg.UserID, &tenant,
		&cfg.ThresholdLow, &cfg.ThresholdMedium, &cfg.ThresholdHigh, &cfg.ThresholdCritical,
		&dashboard, &email, &webhook, &webhookURL,
		&perCategory, &perStage, &intervalNS, &active,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.TenantID = tenant.String
	cfg.WebhookURL = webhookURL.String
	cfg.NotifyDashboard = dashboard == 1
	cfg.NotifyEmail = email == 1
	cfg.NotifyWebhook = webhook == 1
	cfg.PerCategory = perCategory == 1
	cfg.PerStage = perStage == 1
	cfg.Active = active == 1
	cfg.CheckInterval = time.Duration(intervalNS)
	return &cfg, nil
}
