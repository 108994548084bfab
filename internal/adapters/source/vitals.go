package source

import (
	"context"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// CapabilitySet names the vitals an instrumentation build can report.
// Clients on older instrumentation may only support a subset.
type CapabilitySet map[model.MetricName]struct{}

// DefaultCapabilities covers the full vitals set.
func DefaultCapabilities() CapabilitySet {
	return CapabilitySet{
		model.MetricLCP:  {},
		model.MetricINP:  {},
		model.MetricCLS:  {},
		model.MetricFCP:  {},
		model.MetricTTFB: {},
	}
}

// VitalsAdapter normalizes core web vitals samples. Samples naming a vital
// outside the capability set are dropped rather than guessed at.
type VitalsAdapter struct {
	emitter
	caps CapabilitySet
}

// VitalsOption configures the vitals adapter.
type VitalsOption func(*VitalsAdapter)

// WithCapabilities overrides the supported vitals set.
func WithCapabilities(caps CapabilitySet) VitalsOption {
	return func(a *VitalsAdapter) {
		if len(caps) > 0 {
			a.caps = caps
		}
	}
}

// NewVitalsAdapter creates a vitals adapter with the default capability set.
func NewVitalsAdapter(opts ...VitalsOption) *VitalsAdapter {
	a := &VitalsAdapter{caps: DefaultCapabilities()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *VitalsAdapter) Kind() string { return KindVitals }

func (a *VitalsAdapter) Init(_ context.Context) error {
	if len(a.caps) == 0 {
		return ErrUnavailable
	}
	return nil
}

func (a *VitalsAdapter) Observe(ctx context.Context, s Sample) {
	name := model.MetricName(s.Name)
	if _, ok := a.caps[name]; !ok {
		metrics.RecordSampleDropped(KindVitals, "unsupported_vital")
		return
	}
	if s.Value < 0 {
		metrics.RecordSampleDropped(KindVitals, "negative_value")
		return
	}

	unit := s.Unit
	if unit == "" {
		unit = "ms"
		if name == model.MetricCLS {
			unit = "score"
		}
	}

	m := model.NewMetric(name, s.Value, unit, s.Time())
	m.Attrs = s.Attrs
	metrics.RecordSampleObserved(KindVitals)
	metrics.ObserveVital(string(name), s.Value)
	a.emit(ctx, m)
}
