// Package source normalizes raw client performance samples into Metric
// records.
//
// Each adapter wraps one signal source (web vitals, navigation timing,
// resource timing, long tasks, user interaction) and emits zero or one
// Metric per observed sample. Adapters never return errors to callers:
// malformed or unsupported samples are counted and dropped.
package source

import (
	"context"
	"sync"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Sample kinds routed by the registry.
const (
	KindVitals      = "vitals"
	KindNavigation  = "navigation"
	KindResource    = "resource"
	KindLongTask    = "long_task"
	KindInteraction = "interaction"
)

// Sample is one raw observation posted by a client page.
type Sample struct {
	Kind    string            `json:"kind"`
	Name    string            `json:"name,omitempty"`
	Value   float64           `json:"value"`
	Unit    string            `json:"unit,omitempty"`
	Path    string            `json:"path,omitempty"`
	EpochMS int64             `json:"timestamp,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// Time returns the sample's client timestamp, falling back to the server
// clock when the client did not report one.
func (s Sample) Time() time.Time {
	if s.EpochMS > 0 {
		return time.UnixMilli(s.EpochMS)
	}
	return time.Now()
}

// Handler receives normalized metrics from an adapter.
type Handler func(ctx context.Context, m model.Metric)

// Adapter wraps one signal source.
type Adapter interface {
	// Kind returns the sample kind this adapter consumes.
	Kind() string

	// Init probes whether the adapter can operate. An adapter that returns
	// an error is left unregistered; the failure never surfaces further.
	Init(ctx context.Context) error

	// Observe consumes one raw sample. Malformed samples are dropped, not
	// reported.
	Observe(ctx context.Context, s Sample)

	// Subscribe registers a handler for normalized metrics and returns its
	// unsubscribe function.
	Subscribe(h Handler) func()
}

// emitter is the shared subscription base embedded by every adapter.
type emitter struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	nextID   int
}

func (e *emitter) Subscribe(h Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[int]Handler)
	}
	id := e.nextID
	e.nextID++
	e.handlers[id] = h
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers, id)
	}
}

func (e *emitter) emit(ctx context.Context, m model.Metric) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, h := range e.handlers {
		h(ctx, m)
	}
}
