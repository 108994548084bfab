// Package enrich attaches ambient page context to raw metrics.
//
// Enrichment is a pure function on the metric emission hot path: no I/O, no
// mutation of inputs, bounded constant time.
package enrich

import (
	"context"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// ContextSource reads the ambient page context at call time.
type ContextSource interface {
	PageContext(ctx context.Context) model.PageContext
}

// Enricher produces EnrichedMetrics from Metrics.
type Enricher struct {
	source       ContextSource
	buildVersion string
}

// Option applies a configuration option to the Enricher.
type Option func(*Enricher)

// WithBuildVersion sets the fallback build version stamped onto metrics
// whose context reports none.
func WithBuildVersion(v string) Option {
	return func(e *Enricher) {
		if v != "" {
			e.buildVersion = v
		}
	}
}

// New creates an Enricher reading ambient context from source.
func New(source ContextSource, opts ...Option) *Enricher {
	e := &Enricher{source: source}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich derives a new EnrichedMetric from m. The input is never mutated;
// every metric is enriched exactly once, by its emitting pipeline.
func (e *Enricher) Enrich(ctx context.Context, m model.Metric) model.EnrichedMetric {
	pc := e.source.PageContext(ctx)
	if pc.Device == "" {
		pc.Device = model.DeviceClassFor(pc.Viewport.Width)
	}
	if pc.Connection == "" {
		pc.Connection = model.ConnectionUnknown
	}
	if pc.BuildVersion == "" {
		pc.BuildVersion = e.buildVersion
	}
	return model.EnrichedMetric{Metric: m, Context: pc}
}
