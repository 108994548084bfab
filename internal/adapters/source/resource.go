package source

import (
	"context"
	"sync"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// Resource window defaults.
const (
	defaultResourceWindow = 64
	slowResourceMS        = 1000
)

// ResourceAdapter normalizes resource timing samples. It keeps a small
// fixed window of recent durations so each emitted metric can carry the
// share of recent loads that were slow.
type ResourceAdapter struct {
	emitter
	mu     sync.Mutex
	window []float64
	head   int
	filled bool
}

// NewResourceAdapter creates a resource timing adapter.
func NewResourceAdapter() *ResourceAdapter {
	return &ResourceAdapter{window: make([]float64, defaultResourceWindow)}
}

func (a *ResourceAdapter) Kind() string { return KindResource }

func (a *ResourceAdapter) Init(_ context.Context) error { return nil }

func (a *ResourceAdapter) Observe(ctx context.Context, s Sample) {
	if s.Path == "" {
		metrics.RecordSampleDropped(KindResource, "missing_path")
		return
	}
	if s.Value < 0 {
		metrics.RecordSampleDropped(KindResource, "negative_value")
		return
	}

	slowShare := a.record(s.Value)

	m := model.NewMetric(model.MetricResource, s.Value, "ms", s.Time())
	m.Attrs = map[string]string{"path": s.Path}
	if initiator, ok := s.Attrs["initiator"]; ok {
		m.Attrs["initiator"] = initiator
	}
	if slowShare >= 0.5 {
		m.Attrs["slow_streak"] = "true"
	}
	metrics.RecordSampleObserved(KindResource)
	a.emit(ctx, m)
}

// record adds a duration to the rolling window and returns the share of
// windowed loads above the slow threshold.
func (a *ResourceAdapter) record(durationMS float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.window[a.head] = durationMS
	a.head++
	if a.head == len(a.window) {
		a.head = 0
		a.filled = true
	}

	n := a.head
	if a.filled {
		n = len(a.window)
	}
	slow := 0
	for i := 0; i < n; i++ {
		if a.window[i] > slowResourceMS {
			slow++
		}
	}
	return float64(slow) / float64(n)
}
