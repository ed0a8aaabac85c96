package models

import "time"

// Project is a construction project ("obra") under cost watch.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TenantID  string    `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BudgetLine is one budgeted cost item of a project.
type BudgetLine struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Category  string    `json:"category"`
	Stage     string    `json:"stage,omitempty"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Expense is one realized cost item of a project.
type Expense struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Category  string    `json:"category"`
	Stage     string    `json:"stage,omitempty"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryCost aggregates budgeted and realized cost for one category (or
// stage) of a project. Only categories with a non-zero budget are produced.
type CategoryCost struct {
	Category string  `json:"category,omitempty"`
	Stage    string  `json:"stage,omitempty"`
	Budgeted float64 `json:"budgeted"`
	Realized float64 `json:"realized"`
}
