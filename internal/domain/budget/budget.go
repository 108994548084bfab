// Package budget compares enriched metrics against configured thresholds
// and escalates violations by severity.
package budget

import (
	"fmt"
	"strings"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Budget is the enforcement threshold for one metric.
type Budget struct {
	Threshold float64
	Unit      string
}

// Table maps metric names to budgets. Built once at startup and treated as
// immutable for the process lifetime.
type Table struct {
	entries map[model.MetricName]Budget
}

// NewTable validates entries and builds an immutable budget table.
// Malformed entries fail fast; a budget with a non-positive threshold or a
// missing unit is a startup contract violation.
func NewTable(entries map[string]Budget) (Table, error) {
	t := Table{entries: make(map[model.MetricName]Budget, len(entries))}
	for name, b := range entries {
		if strings.TrimSpace(name) == "" {
			return Table{}, fmt.Errorf("%w: empty metric name", ErrInvalidBudget)
		}
		if b.Threshold <= 0 {
			return Table{}, fmt.Errorf("%w: %q threshold must be positive", ErrInvalidBudget, name)
		}
		if strings.TrimSpace(b.Unit) == "" {
			return Table{}, fmt.Errorf("%w: %q missing unit", ErrInvalidBudget, name)
		}
		t.entries[model.MetricName(name)] = b
	}
	return t, nil
}

// Lookup returns the budget for a metric name. A missing budget means no
// enforcement, not an error.
func (t Table) Lookup(name model.MetricName) (Budget, bool) {
	b, ok := t.entries[name]
	return b, ok
}

// Size returns the number of configured budgets.
func (t Table) Size() int {
	return len(t.entries)
}

// SeverityPolicy holds the ratio cutoffs for violation classification.
// The defaults mirror the historical constants but are configuration, not
// law.
type SeverityPolicy struct {
	HighRatio   float64
	MediumRatio float64
}

// DefaultSeverityPolicy returns the stock ratio cutoffs.
func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{HighRatio: 2.0, MediumRatio: 1.5}
}

// SeverityFor classifies a value/threshold ratio. Pure function; a stored
// violation's severity is always recomputable from its ratio.
func SeverityFor(ratio float64, p SeverityPolicy) model.Severity {
	switch {
	case ratio > p.HighRatio:
		return model.SeverityHigh
	case ratio > p.MediumRatio:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
