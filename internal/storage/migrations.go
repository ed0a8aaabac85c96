package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Projects table
			CREATE TABLE IF NOT EXISTS projects (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				tenant_id TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Budgeted cost items
			CREATE TABLE IF NOT EXISTS budget_lines (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				category TEXT NOT NULL,
				stage TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);

			-- Realized cost items
			CREATE TABLE IF NOT EXISTS expenses (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				category TEXT NOT NULL,
				stage TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);

			-- Alert configurations, one per (project, user)
			CREATE TABLE IF NOT EXISTS alert_configs (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				tenant_id TEXT,
				threshold_low REAL NOT NULL,
				threshold_medium REAL NOT NULL,
				threshold_high REAL NOT NULL,
				threshold_critical REAL NOT NULL,
				notify_dashboard INTEGER NOT NULL DEFAULT 0,
				notify_email INTEGER NOT NULL DEFAULT 0,
				notify_webhook INTEGER NOT NULL DEFAULT 0,
				webhook_url TEXT,
				per_category INTEGER NOT NULL DEFAULT 1,
				per_stage INTEGER NOT NULL DEFAULT 0,
				check_interval_ns INTEGER NOT NULL DEFAULT 0,
				active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				UNIQUE (project_id, user_id),
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);

			-- Deviation alerts
			CREATE TABLE IF NOT EXISTS alerts (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				tenant_id TEXT,
				severity TEXT NOT NULL,
				deviation_pct REAL NOT NULL,
				budgeted REAL NOT NULL,
				realized REAL NOT NULL,
				deviation_amount REAL NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				stage TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'ACTIVE',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);

			-- Append-only lifecycle audit log
			CREATE TABLE IF NOT EXISTS alert_history (
				id TEXT PRIMARY KEY,
				alert_id TEXT NOT NULL,
				project_id TEXT NOT NULL,
				tenant_id TEXT,
				action TEXT NOT NULL,
				severity TEXT NOT NULL,
				deviation_pct REAL NOT NULL,
				budgeted REAL NOT NULL,
				realized REAL NOT NULL,
				deviation_amount REAL NOT NULL,
				note TEXT,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE
			);

			-- Per-channel notification records
			CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				alert_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				tenant_id TEXT,
				channel TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'PENDING',
				title TEXT NOT NULL,
				body TEXT NOT NULL,
				payload_json TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				max_attempts INTEGER NOT NULL DEFAULT 3,
				sent_at DATETIME,
				read_at DATETIME,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE
			);

			-- At most one ACTIVE alert per (project, category, stage).
			-- Concurrent evaluators both inserting race here; the loser
			-- gets a unique violation, surfaced as a conflict.
			CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_active_scope
				ON alerts(project_id, category, stage) WHERE status = 'ACTIVE';

			-- Indexes
			CREATE INDEX IF NOT EXISTS idx_budget_lines_project ON budget_lines(project_id);
			CREATE INDEX IF NOT EXISTS idx_expenses_project ON expenses(project_id);
			CREATE INDEX IF NOT EXISTS idx_configs_project ON alert_configs(project_id, active);
			CREATE INDEX IF NOT EXISTS idx_alerts_project ON alerts(project_id, status);
			CREATE INDEX IF NOT EXISTS idx_history_alert ON alert_history(alert_id);
			CREATE INDEX IF NOT EXISTS idx_notifications_alert ON notifications(alert_id);
			CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
