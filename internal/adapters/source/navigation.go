package source

import (
	"context"
	"sync"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// navigationSeenLimit bounds how many page loads the adapter remembers for
// once-per-load suppression.
const navigationSeenLimit = 1024

// NavigationAdapter emits a ttfb metric from navigation timing, once per
// page load. Repeat samples for the same load (identified by session and
// path) are suppressed.
type NavigationAdapter struct {
	emitter
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewNavigationAdapter creates a navigation timing adapter.
func NewNavigationAdapter() *NavigationAdapter {
	return &NavigationAdapter{seen: make(map[string]struct{})}
}

func (a *NavigationAdapter) Kind() string { return KindNavigation }

func (a *NavigationAdapter) Init(_ context.Context) error { return nil }

func (a *NavigationAdapter) Observe(ctx context.Context, s Sample) {
	if s.Value < 0 {
		metrics.RecordSampleDropped(KindNavigation, "negative_value")
		return
	}

	key := s.Attrs["session_id"] + "|" + s.Path
	a.mu.Lock()
	if _, dup := a.seen[key]; dup {
		a.mu.Unlock()
		metrics.RecordSampleDropped(KindNavigation, "duplicate_load")
		return
	}
	if len(a.seen) >= navigationSeenLimit {
		a.seen = make(map[string]struct{}, navigationSeenLimit)
	}
	a.seen[key] = struct{}{}
	a.mu.Unlock()

	m := model.NewMetric(model.MetricTTFB, s.Value, "ms", s.Time())
	if s.Path != "" {
		m.Attrs = map[string]string{"path": s.Path}
	}
	metrics.RecordSampleObserved(KindNavigation)
	metrics.ObserveVital(string(model.MetricTTFB), s.Value)
	a.emit(ctx, m)
}
