// Package alerting evaluates project cost deviations against configured
// thresholds and raises severity-tiered alerts.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/obraguard/obraguard/internal/deviation"
	"github.com/obraguard/obraguard/internal/metrics"
	"github.com/obraguard/obraguard/internal/models"
	"github.com/obraguard/obraguard/internal/storage"
)

// NoiseFloorPct is the fixed deviation floor below which no alert is ever
// raised, regardless of configured thresholds.
const NoiseFloorPct = 5.0

// FanOut materializes notifications for a freshly created alert.
type FanOut interface {
	FanOut(ctx context.Context, alert *models.Alert, configs []*models.AlertConfig) (int, error)
}

// Result summarizes one evaluation pass.
type Result struct {
	AlertsCreated      int `json:"alerts_created"`
	CategoriesAnalyzed int `json:"categories_analyzed"`
}

// Evaluator runs threshold evaluation for a project. Each call is a
// short-lived pass; concurrent passes for the same project are resolved by
// the store's active-alert uniqueness constraint.
type Evaluator struct {
	storage storage.Storage
	calc    *deviation.Calculator
	fanout  FanOut
}

// NewEvaluator creates an evaluator. fanout may be nil, in which case alerts
// are created without materializing notifications (useful in tests).
func NewEvaluator(store storage.Storage, calc *deviation.Calculator, fanout FanOut) *Evaluator {
	return &Evaluator{storage: store, calc: calc, fanout: fanout}
}

// Evaluate compares budgeted and realized cost for every category of the
// project and creates one alert per category whose deviation crosses a
// configured threshold. Already-alerted categories are skipped. A hard
// persistence error aborts the remaining categories; alerts committed before
// the failure stand and are reflected in the returned counts.
func (e *Evaluator) Evaluate(ctx context.Context, projectID, tenantID string) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	var res Result

	configs, err := e.storage.Configs().ListActive(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("list configurations: %w", err)
	}
	if len(configs) == 0 {
		return res, nil
	}

	costs, err := e.calc.Categories(ctx, projectID, tenantID)
	if err != nil {
		return res, err
	}
	res.CategoriesAnalyzed = len(costs)

	categoryConfigs := filterConfigs(configs, func(c *models.AlertConfig) bool { return c.PerCategory })
	for _, cost := range costs {
		created, err := e.evaluateScope(ctx, projectID, cost, categoryConfigs, configs)
		if err != nil {
			return res, err
		}
		if created {
			res.AlertsCreated++
		}
	}

	stageConfigs := filterConfigs(configs, func(c *models.AlertConfig) bool { return c.PerStage })
	if len(stageConfigs) > 0 {
		stages, err := e.calc.Stages(ctx, projectID, tenantID)
		if err != nil {
			return res, err
		}
		res.CategoriesAnalyzed += len(stages)
		for _, cost := range stages {
			created, err := e.evaluateScope(ctx, projectID, cost, stageConfigs, configs)
			if err != nil {
				return res, err
			}
			if created {
				res.AlertsCreated++
			}
		}
	}

	return res, nil
}

// evaluateScope evaluates one category (or stage) figure against the
// matching configurations and creates at most one alert for it.
func (e *Evaluator) evaluateScope(ctx context.Context, projectID string, cost *models.CategoryCost, scopeConfigs, allConfigs []*models.AlertConfig) (bool, error) {
	pct := deviation.Percent(cost)
	if pct < NoiseFloorPct {
		return false, nil
	}

	for _, cfg := range scopeConfigs {
		severity, ok := cfg.SeverityFor(pct)
		if !ok {
			continue
		}

		alert := &models.Alert{
			ProjectID:       projectID,
			TenantID:        cfg.TenantID,
			Severity:        severity,
			DeviationPct:    pct,
			Budgeted:        cost.Budgeted,
			Realized:        cost.Realized,
			DeviationAmount: deviation.Amount(cost),
			Category:        cost.Category,
			Stage:           cost.Stage,
			Description:     describeDeviation(pct, cost),
			Status:          models.AlertStatusActive,
		}

		err := e.storage.Alerts().CreateWithHistory(ctx, alert)
		if errors.Is(err, storage.ErrConflict) {
			// An ACTIVE alert already covers this scope, either from an
			// earlier pass or a concurrent one. Benign; nothing to do.
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("create alert for %s: %w", scopeLabel(cost), err)
		}

		metrics.AlertsCreatedTotal.WithLabelValues(string(severity)).Inc()

		if e.fanout != nil {
			// Fan-out failures must not roll back the committed alert;
			// the notification gap is logged for manual reconciliation.
			if n, err := e.fanout.FanOut(ctx, alert, allConfigs); err != nil {
				log.Printf("fan-out for alert %s (%s): created %d notifications, error: %v",
					alert.ID, scopeLabel(cost), n, err)
			}
		}
		return true, nil
	}
	return false, nil
}

func describeDeviation(pct float64, cost *models.CategoryCost) string {
	if cost.Stage != "" {
		return fmt.Sprintf("Deviation of %.2f%% in stage %s", pct, cost.Stage)
	}
	return fmt.Sprintf("Deviation of %.2f%% in category %s", pct, cost.Category)
}

func scopeLabel(cost *models.CategoryCost) string {
	if cost.Stage != "" {
		return "stage " + cost.Stage
	}
	return "category " + cost.Category
}

func filterConfigs(configs []*models.AlertConfig, keep func(*models.AlertConfig) bool) []*models.AlertConfig {
	var out []*models.AlertConfig
	for _, c := range configs {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
