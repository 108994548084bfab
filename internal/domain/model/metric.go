// Package model contains domain records passed between pipeline stages.
package model

import "time"

// MetricName identifies a performance signal.
type MetricName string

// Known metric names. Custom business metrics use MetricCustom with the
// concrete name carried in Metric.Attrs["event"].
const (
	MetricLCP      MetricName = "lcp"
	MetricINP      MetricName = "inp"
	MetricCLS      MetricName = "cls"
	MetricFCP      MetricName = "fcp"
	MetricTTFB     MetricName = "ttfb"
	MetricLongTask MetricName = "long_task"
	MetricResource MetricName = "resource"
	MetricCustom   MetricName = "custom"
)

// Rating buckets a metric value against vendor-defined thresholds.
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
	// RatingNone applies to metrics without defined rating thresholds.
	RatingNone Rating = "none"
)

// ratingThreshold holds the good/poor boundaries for one metric.
type ratingThreshold struct {
	good float64
	poor float64
}

// Vendor thresholds for Core Web Vitals and companion metrics.
// Values for time-based metrics are milliseconds; CLS is unitless.
var ratingThresholds = map[MetricName]ratingThreshold{
	MetricLCP:  {good: 2500, poor: 4000},
	MetricINP:  {good: 200, poor: 500},
	MetricCLS:  {good: 0.1, poor: 0.25},
	MetricFCP:  {good: 1800, poor: 3000},
	MetricTTFB: {good: 800, poor: 1800},
}

// RateValue derives the rating for a metric value. Metrics without defined
// thresholds rate as RatingNone.
func RateValue(name MetricName, value float64) Rating {
	t, ok := ratingThresholds[name]
	if !ok {
		return RatingNone
	}
	switch {
	case value <= t.good:
		return RatingGood
	case value <= t.poor:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

// Metric is one observed measurement. Immutable once created; enrichment
// produces a new record rather than mutating in place.
type Metric struct {
	Name      MetricName
	Value     float64
	Unit      string
	Timestamp time.Time
	Rating    Rating
	// Attrs carries adapter-specific detail such as the resource path or
	// the custom event name. May be nil.
	Attrs map[string]string
}

// NewMetric builds a Metric with its rating derived from the value.
func NewMetric(name MetricName, value float64, unit string, ts time.Time) Metric {
	return Metric{
		Name:      name,
		Value:     value,
		Unit:      unit,
		Timestamp: ts,
		Rating:    RateValue(name, value),
	}
}
