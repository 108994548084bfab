package model

import "time"

// Severity grades a budget violation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for monotonicity checks. Higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Violation records a metric exceeding its configured budget. Append-only;
// severity is recomputable from Value/Threshold and never separately mutated.
type Violation struct {
	Metric    MetricName
	Value     float64
	Threshold float64
	Overage   float64
	Severity  Severity
	Timestamp time.Time
	Context   PageContext
}

// Ratio returns value over threshold, the input to severity classification.
func (v Violation) Ratio() float64 {
	if v.Threshold == 0 {
		return 0
	}
	return v.Value / v.Threshold
}
