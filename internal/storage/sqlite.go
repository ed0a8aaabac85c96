package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB

	projects      *sqliteProjectRepo
	configs       *sqliteConfigRepo
	alerts        *sqliteAlertRepo
	history       *sqliteHistoryRepo
	notifications *sqliteNotificationRepo
}

// NewSQLiteStorage creates a new SQLite storage.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?_time_format=sqlite", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s.db = db

	s.projects = &sqliteProjectRepo{db: db}
	s.configs = &sqliteConfigRepo{db: db}
	s.history = &sqliteHistoryRepo{db: db}
	s.alerts = &sqliteAlertRepo{db: db, history: s.history}
	s.notifications = &sqliteNotificationRepo{db: db}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	s.db = nil
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("database not open")
	}
	return runMigrations(s.db)
}

// Projects returns the project repository.
func (s *SQLiteStorage) Projects() ProjectRepository { return s.projects }

// Configs returns the alert configuration repository.
func (s *SQLiteStorage) Configs() ConfigRepository { return s.configs }

// Alerts returns the alert repository.
func (s *SQLiteStorage) Alerts() AlertRepository { return s.alerts }

// History returns the alert history repository.
func (s *SQLiteStorage) History() HistoryRepository { return s.history }

// Notifications returns the notification repository.
func (s *SQLiteStorage) Notifications() NotificationRepository { return s.notifications }

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
