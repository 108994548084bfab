// Package alert defines the alerting sink used by budget escalation.
package alert

import (
	"context"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
)

// Alert types produced by the validator.
const (
	TypeBudgetViolation   = "budget_violation"
	TypeSessionEscalation = "session_escalation"
)

// Alert is the payload handed to sinks on escalation.
type Alert struct {
	Type      string            `json:"type"`
	Metric    model.MetricName  `json:"metric"`
	Value     float64           `json:"value"`
	Threshold float64           `json:"threshold"`
	Severity  model.Severity    `json:"severity"`
	Context   model.PageContext `json:"context"`
	Timestamp time.Time         `json:"timestamp"`
}

// Sink receives alerts. Implementations must not block the caller for
// longer than their own configured timeout and must absorb their own
// failures; a failed alert never propagates past the validator.
type Sink interface {
	Send(ctx context.Context, a Alert) error
}

// LogSink writes alerts to the structured log. The default sink.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a LogSink on the given logger.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

// Send implements Sink.
func (s *LogSink) Send(ctx context.Context, a Alert) error {
	s.log.Warn(ctx, "performance alert",
		logger.String("type", a.Type),
		logger.String("metric", string(a.Metric)),
		logger.Float64("value", a.Value),
		logger.Float64("threshold", a.Threshold),
		logger.String("severity", string(a.Severity)),
		logger.String("url", a.Context.URL),
		logger.String("session", a.Context.SessionID),
	)
	return nil
}

// MultiSink fans an alert out to several sinks. Errors from individual
// sinks are collected into the last non-nil error but do not stop fan-out.
type MultiSink []Sink

// Send implements Sink.
func (m MultiSink) Send(ctx context.Context, a Alert) error {
	var last error
	for _, s := range m {
		if err := s.Send(ctx, a); err != nil {
			last = err
		}
	}
	return last
}
