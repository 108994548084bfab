package source

import (
	"context"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// longTaskMinMS is the floor below which main-thread work does not count as
// a long task.
const longTaskMinMS = 50

// LongTaskAdapter normalizes long-task entries. Entries shorter than the
// long-task floor are dropped.
type LongTaskAdapter struct {
	emitter
}

// NewLongTaskAdapter creates a long-task adapter.
func NewLongTaskAdapter() *LongTaskAdapter {
	return &LongTaskAdapter{}
}

func (a *LongTaskAdapter) Kind() string { return KindLongTask }

func (a *LongTaskAdapter) Init(_ context.Context) error { return nil }

func (a *LongTaskAdapter) Observe(ctx context.Context, s Sample) {
	if s.Value < longTaskMinMS {
		metrics.RecordSampleDropped(KindLongTask, "below_threshold")
		return
	}

	m := model.NewMetric(model.MetricLongTask, s.Value, "ms", s.Time())
	m.Attrs = s.Attrs
	metrics.RecordSampleObserved(KindLongTask)
	a.emit(ctx, m)
}
