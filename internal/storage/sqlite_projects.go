package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obraguard/obraguard/internal/models"
)

type sqliteProjectRepo struct {
	db *sql.DB
}

func (r *sqliteProjectRepo) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, tenant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.Name, nullString(project.TenantID),
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *sqliteProjectRepo) GetByID(ctx context.Context, id, tenantID string) (*models.Project, error) {
	query := `SELECT id, name, tenant_id, created_at, updated_at FROM projects WHERE id = ?`

	var p models.Project
	var tenant sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &tenant, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.TenantID = tenant.String

	// Tenant isolation: a project in another tenant is indistinguishable
	// from a missing one.
	if tenantID != "" && p.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *sqliteProjectRepo) AddBudgetLine(ctx context.Context, line *models.BudgetLine) error {
	query := `
		INSERT INTO budget_lines (id, project_id, category, stage, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		line.ID, line.ProjectID, line.Category, line.Stage, line.Amount, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert budget line: %w", err)
	}
	return nil
}

func (r *sqliteProjectRepo) AddExpense(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, project_id, category, stage, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.ProjectID, expense.Category, expense.Stage,
		expense.Amount, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *sqliteProjectRepo) CostByCategory(ctx context.Context, projectID string) ([]*models.CategoryCost, error) {
	// Zero-budget categories are excluded: without a budget there is no
	// base for a deviation percentage.
	query := `
		SELECT b.category,
			SUM(b.amount) AS budgeted,
			COALESCE((SELECT SUM(e.amount) FROM expenses e
				WHERE e.project_id = b.project_id AND e.category = b.category), 0) AS realized
		FROM budget_lines b
		WHERE b.project_id = ?
		GROUP BY b.category
		HAVING SUM(b.amount) > 0
		ORDER BY b.category
	`
	return r.queryCosts(ctx, query, projectID, false)
}

func (r *sqliteProjectRepo) CostByStage(ctx context.Context, projectID string) ([]*models.CategoryCost, error) {
	query := `
		SELECT b.stage,
			SUM(b.amount) AS budgeted,
			COALESCE((SELECT SUM(e.amount) FROM expenses e
				WHERE e.project_id = b.project_id AND e.stage = b.stage), 0) AS realized
		FROM budget_lines b
		WHERE b.project_id = ? AND b.stage != ''
		GROUP BY b.stage
		HAVING SUM(b.amount) > 0
		ORDER BY b.stage
	`
	return r.queryCosts(ctx, query, projectID, true)
}

func (r *sqliteProjectRepo) queryCosts(ctx context.Context, query, projectID string, byStage bool) ([]*models.CategoryCost, error) {
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("query costs: %w", err)
	}
	defer rows.Close()

	var costs []*models.CategoryCost
	for rows.Next() {
		var c models.CategoryCost
		var key string
		if err := rows.Scan(&key, &c.Budgeted, &c.Realized); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		if byStage {
			c.Stage = key
		} else {
			c.Category = key
		}
		costs = append(costs, &c)
	}
	return costs, rows.Err()
}
