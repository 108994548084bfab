package source

import (
	"context"
	"sort"
	"sync"

	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// Registry routes incoming samples to the adapter for their kind and fans
// normalized metrics out to downstream subscribers.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	log      logger.Logger
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		log:      logger.Get().Named("source"),
	}
}

// Register probes the adapter and adds it to the routing table. An adapter
// whose probe fails is skipped; the failure is logged and swallowed so a
// missing signal source never takes the collector down.
func (r *Registry) Register(ctx context.Context, a Adapter) {
	if err := a.Init(ctx); err != nil {
		r.log.Warn(ctx, "adapter unavailable, skipping",
			logger.String("kind", a.Kind()),
			logger.Error(err),
		)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Kind()] = a
}

// Subscribe attaches a handler to every registered adapter and returns one
// unsubscribe function covering all of them.
func (r *Registry) Subscribe(h Handler) func() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unsubs := make([]func(), 0, len(r.adapters))
	for _, a := range r.adapters {
		unsubs = append(unsubs, a.Subscribe(h))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Dispatch routes one sample to its adapter. Samples of unknown kind are
// counted and dropped.
func (r *Registry) Dispatch(ctx context.Context, s Sample) {
	r.mu.RLock()
	a, ok := r.adapters[s.Kind]
	r.mu.RUnlock()

	if !ok {
		metrics.RecordSampleDropped("registry", "unknown_kind")
		return
	}
	a.Observe(ctx, s)
}

// Kinds returns the registered sample kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
