// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"time"

	"github.com/obraguard/obraguard/internal/models"
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Projects() ProjectRepository
	Configs() ConfigRepository
	Alerts() AlertRepository
	History() HistoryRepository
	Notifications() NotificationRepository
}

// ProjectRepository defines operations for projects and their cost records.
// The CRUD surfaces for budgets and expenses live elsewhere; this repository
// only covers what deviation evaluation needs.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	// GetByID returns ErrNotFound when the project is absent or, when
	// tenantID is non-empty, belongs to a different tenant.
	GetByID(ctx context.Context, id, tenantID string) (*models.Project, error)
	AddBudgetLine(ctx context.Context, line *models.BudgetLine) error
	AddExpense(ctx context.Context, expense *models.Expense) error
	// CostByCategory aggregates budgeted and realized totals per category,
	// excluding categories with zero budget.
	CostByCategory(ctx context.Context, projectID string) ([]*models.CategoryCost, error)
	// CostByStage aggregates budgeted and realized totals per stage,
	// excluding stages with zero budget.
	CostByStage(ctx context.Context, projectID string) ([]*models.CategoryCost, error)
}

// ConfigRepository defines operations for alert configurations.
type ConfigRepository interface {
	// Save inserts or replaces the configuration for (project, user).
	// The configuration must already be validated.
	Save(ctx context.Context, cfg *models.AlertConfig) error
	GetByID(ctx context.Context, id string) (*models.AlertConfig, error)
	// GetForProjectUser returns ErrNotFound when no configuration exists.
	GetForProjectUser(ctx context.Context, projectID, userID string) (*models.AlertConfig, error)
	// ListActive returns all active configurations for a project.
	ListActive(ctx context.Context, projectID string) ([]*models.AlertConfig, error)
	// Deactivate marks the (project, user) configuration inactive.
	Deactivate(ctx context.Context, projectID, userID string) error
}

// AlertRepository defines operations for deviation alerts. It owns the
// at-most-one-active-alert-per-(project, category, stage) invariant and
// enforces it at write time.
type AlertRepository interface {
	// CreateWithHistory inserts the alert and its CREATED history entry in
	// one transaction. Returns ErrConflict when an ACTIVE alert already
	// exists for the same (project, category, stage).
	CreateWithHistory(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	// ListActive returns ACTIVE alerts for a project, optionally narrowed
	// to one category.
	ListActive(ctx context.Context, projectID, category string) ([]*models.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error)
	// Transition updates the alert status and appends the matching history
	// entry atomically. Returns ErrConflict for invalid transitions (for
	// example resolving an already resolved alert).
	Transition(ctx context.Context, id string, status models.AlertStatus, note string) error
	// MarkVisualized appends a VISUALIZED history entry without changing
	// the alert's status.
	MarkVisualized(ctx context.Context, id, note string) error
	Stats(ctx context.Context, projectID string) (*models.AlertStats, error)
	// DeleteResolvedBefore removes RESOLVED/IGNORED alerts created before
	// the cutoff, returning the number deleted.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	ProjectID string
	TenantID  string
	Status    models.AlertStatus
	Severity  models.Severity
	Since     time.Time
	Until     time.Time
	Limit     int
}

// HistoryRepository defines operations for the append-only alert audit log.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListByAlert(ctx context.Context, alertID string) ([]*models.HistoryEntry, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]*models.HistoryEntry, error)
}

// NotificationRepository defines operations for notification records.
// Records are created by fan-out and mutated only through the atomic
// outcome methods below.
type NotificationRepository interface {
	// CreateBatch inserts all notifications in one transaction.
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByAlert(ctx context.Context, alertID string) ([]*models.Notification, error)
	// ListPending returns deliverable notifications (PENDING, or ERROR
	// with attempts below their max), optionally narrowed to one alert.
	ListPending(ctx context.Context, alertID string) ([]*models.Notification, error)
	// MarkSent transitions PENDING to SENT with a sent timestamp.
	MarkSent(ctx context.Context, id string) error
	// MarkFailed records a delivery failure: attempts is incremented and
	// status set to ERROR in a single statement, guarded against exceeding
	// the max attempts bound.
	MarkFailed(ctx context.Context, id, errText string) error
	// MarkRead acknowledges SENT dashboard notifications for (alert, user)
	// and returns how many were updated.
	MarkRead(ctx context.Context, alertID, userID string) (int64, error)
}
