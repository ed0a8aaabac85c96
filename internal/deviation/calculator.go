// Package deviation computes budgeted-vs-realized cost figures per project.
package deviation

import (
	"context"
	"fmt"
	"math"

	"github.com/obraguard/obraguard/internal/models"
	"github.com/obraguard/obraguard/internal/storage"
)

// Calculator aggregates budget and expense records into per-category cost
// figures. It performs reads only.
type Calculator struct {
	storage storage.Storage
}

// NewCalculator creates a calculator over the given store.
func NewCalculator(store storage.Storage) *Calculator {
	return &Calculator{storage: store}
}

// Categories returns budgeted/realized totals per category for a project.
// Categories without a budgeted amount are excluded. Returns
// storage.ErrNotFound when the project is absent or invisible to the tenant.
func (c *Calculator) Categories(ctx context.Context, projectID, tenantID string) ([]*models.CategoryCost, error) {
	if _, err := c.storage.Projects().GetByID(ctx, projectID, tenantID); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}
	costs, err := c.storage.Projects().CostByCategory(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("aggregate costs for project %s: %w", projectID, err)
	}
	return costs, nil
}

// Stages returns budgeted/realized totals per stage for a project, for
// configurations that track stage granularity.
func (c *Calculator) Stages(ctx context.Context, projectID, tenantID string) ([]*models.CategoryCost, error) {
	if _, err := c.storage.Projects().GetByID(ctx, projectID, tenantID); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}
	costs, err := c.storage.Projects().CostByStage(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("aggregate stage costs for project %s: %w", projectID, err)
	}
	return costs, nil
}

// Percent returns the absolute deviation percentage for one cost figure.
// The caller guarantees Budgeted is non-zero; aggregation never produces
// zero-budget rows.
func Percent(cost *models.CategoryCost) float64 {
	return math.Abs(cost.Realized-cost.Budgeted) / cost.Budgeted * 100
}

// Amount returns the signed deviation amount (realized minus budgeted).
func Amount(cost *models.CategoryCost) float64 {
	return cost.Realized - cost.Budgeted
}
