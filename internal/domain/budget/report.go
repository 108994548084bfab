package budget

import (
	"context"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// MetricSummary aggregates violations for one metric inside a window.
type MetricSummary struct {
	Count      int                    `json:"count"`
	BySeverity map[model.Severity]int `json:"by_severity"`
	MaxRatio   float64                `json:"max_ratio"`
}

// Report aggregates violations within a query window. Identical inputs
// produce identical reports.
type Report struct {
	WindowMS        int64                                `json:"window_ms"`
	TotalViolations int                                  `json:"total_violations"`
	ByMetric        map[model.MetricName]MetricSummary   `json:"by_metric"`
	BySeverity      map[model.Severity]int               `json:"by_severity"`
	BudgetHealth    float64                              `json:"budget_health"`
}

// Report aggregates the violation log over the trailing window and computes
// the budget health percentage:
//
//	(configured - distinctViolated) / configured * 100, clamped to >= 0
//
// With no configured budgets the health is 100.
func (v *Validator) Report(ctx context.Context, window time.Duration) Report {
	since := v.now().Add(-window)
	violations := v.store.Window(ctx, since)

	r := Report{
		WindowMS:   window.Milliseconds(),
		ByMetric:   make(map[model.MetricName]MetricSummary),
		BySeverity: make(map[model.Severity]int),
	}

	for _, viol := range violations {
		r.TotalViolations++
		r.BySeverity[viol.Severity]++

		s := r.ByMetric[viol.Metric]
		if s.BySeverity == nil {
			s.BySeverity = make(map[model.Severity]int)
		}
		s.Count++
		s.BySeverity[viol.Severity]++
		if ratio := viol.Ratio(); ratio > s.MaxRatio {
			s.MaxRatio = ratio
		}
		r.ByMetric[viol.Metric] = s
	}

	configured := v.table.Size()
	if configured == 0 {
		r.BudgetHealth = 100
		return r
	}
	healthy := configured - len(r.ByMetric)
	if healthy < 0 {
		healthy = 0
	}
	r.BudgetHealth = float64(healthy) / float64(configured) * 100
	return r
}
