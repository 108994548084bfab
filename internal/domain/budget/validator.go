package budget

import (
	"context"
	"sync"
	"time"

	"github.com/beaconkit/beacon/internal/adapters/repository"
	"github.com/beaconkit/beacon/internal/alert"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// Action is a corrective hook invoked on high-severity violations. Hooks
// must be idempotent; the validator never awaits their completion.
type Action func()

// Validator checks enriched metrics against the budget table and runs the
// escalation policy. Stateless across metrics except for the rolling
// violation log and the burst counter.
type Validator struct {
	table  Table
	policy SeverityPolicy
	store  repository.Store
	sink   alert.Sink
	burst  *burstTracker
	now    func() time.Time
	log    logger.Logger

	mu      sync.RWMutex
	actions map[model.MetricName]Action
}

// NewValidator creates a Validator over the given table and violation log.
func NewValidator(table Table, store repository.Store, sink alert.Sink, opts ...Option) *Validator {
	v := &Validator{
		table:   table,
		policy:  DefaultSeverityPolicy(),
		store:   store,
		sink:    sink,
		now:     time.Now,
		log:     logger.Named("budget"),
		actions: make(map[model.MetricName]Action),
	}
	v.burst = newBurstTracker(defaultBurstThreshold, defaultBurstWindow)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// RegisterAction installs a corrective hook for a metric name. Replaces any
// previous hook for the same name.
func (v *Validator) RegisterAction(name model.MetricName, fn Action) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.actions[name] = fn
}

// Validate checks one enriched metric. Returns the violation and true when
// the metric exceeds its budget. Absent budget means the check passes
// trivially. All internal failures are absorbed; nothing escapes to the
// caller.
func (v *Validator) Validate(ctx context.Context, em model.EnrichedMetric) (model.Violation, bool) {
	b, ok := v.table.Lookup(em.Name)
	if !ok || em.Value <= b.Threshold {
		return model.Violation{}, false
	}

	now := v.now()
	viol := model.Violation{
		Metric:    em.Name,
		Value:     em.Value,
		Threshold: b.Threshold,
		Overage:   em.Value - b.Threshold,
		Severity:  SeverityFor(em.Value/b.Threshold, v.policy),
		Timestamp: now,
		Context:   em.Context,
	}

	if err := v.store.Append(ctx, viol); err != nil {
		v.log.Warn(ctx, "violation log append failed", logger.Error(err))
	}
	metrics.RecordViolation(string(viol.Metric), string(viol.Severity))

	v.escalate(ctx, viol)

	if v.burst.record(now) {
		v.escalateSession(ctx, viol, now)
	}
	return viol, true
}

// escalate applies the severity-graded response policy.
func (v *Validator) escalate(ctx context.Context, viol model.Violation) {
	switch viol.Severity {
	case model.SeverityHigh:
		v.dispatchAlert(ctx, viol)
		v.runAction(ctx, viol.Metric)
	case model.SeverityMedium:
		v.dispatchAlert(ctx, viol)
	default:
		v.log.Info(ctx, "budget exceeded",
			logger.String("metric", string(viol.Metric)),
			logger.Float64("value", viol.Value),
			logger.Float64("threshold", viol.Threshold),
		)
	}
}

func (v *Validator) dispatchAlert(ctx context.Context, viol model.Violation) {
	a := alert.Alert{
		Type:      alert.TypeBudgetViolation,
		Metric:    viol.Metric,
		Value:     viol.Value,
		Threshold: viol.Threshold,
		Severity:  viol.Severity,
		Context:   viol.Context,
		Timestamp: viol.Timestamp,
	}
	if err := v.sink.Send(ctx, a); err != nil {
		v.log.Warn(ctx, "alert dispatch failed", logger.Error(err))
	}
	metrics.RecordAlert(string(viol.Severity))
}

// runAction fires the registered corrective hook without awaiting it.
func (v *Validator) runAction(ctx context.Context, name model.MetricName) {
	v.mu.RLock()
	fn, ok := v.actions[name]
	v.mu.RUnlock()
	if !ok {
		return
	}
	metrics.RecordCorrectiveAction()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				v.log.Error(ctx, "corrective action panicked",
					logger.String("metric", string(name)),
					logger.Any("panic", r),
				)
			}
		}()
		fn()
	}()
}

// escalateSession emits a session-wide escalation, independent of the
// individual violation's severity.
func (v *Validator) escalateSession(ctx context.Context, last model.Violation, now time.Time) {
	metrics.RecordSessionEscalation()
	a := alert.Alert{
		Type:      alert.TypeSessionEscalation,
		Metric:    last.Metric,
		Value:     last.Value,
		Threshold: last.Threshold,
		Severity:  model.SeverityHigh,
		Context:   last.Context,
		Timestamp: now,
	}
	if err := v.sink.Send(ctx, a); err != nil {
		v.log.Warn(ctx, "session escalation dispatch failed", logger.Error(err))
	}
}
