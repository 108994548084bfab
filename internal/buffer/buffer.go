// Package buffer batches performance events for periodic delivery.
//
// Events accumulate until the buffer reaches capacity or the flush interval
// elapses, whichever comes first. A flush hands the batch to the deliverer
// on its own goroutine and forgets it; delivery is fire-and-forget.
package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// Flush trigger labels.
const (
	TriggerCapacity = "capacity"
	TriggerInterval = "interval"
	TriggerShutdown = "shutdown"
)

// Default buffer configuration.
const (
	defaultCapacity      = 100
	defaultFlushInterval = 5 * time.Second
)

// Deliverer ships a flushed batch. Implementations swallow their own
// failures; the buffer never learns whether delivery succeeded.
type Deliverer interface {
	Deliver(ctx context.Context, events []model.PerformanceEvent)
}

// Buffer accumulates performance events and flushes them in batches.
type Buffer struct {
	deliverer Deliverer
	capacity  int
	interval  time.Duration

	mu     sync.Mutex
	events []model.PerformanceEvent
	closed bool

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithCapacity sets how many events accumulate before a size-triggered
// flush.
func WithCapacity(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithFlushInterval sets the periodic flush interval.
func WithFlushInterval(d time.Duration) Option {
	return func(b *Buffer) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithLogger overrides the buffer's logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Buffer) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a buffer that flushes to the deliverer.
func New(d Deliverer, opts ...Option) *Buffer {
	b := &Buffer{
		deliverer: d,
		capacity:  defaultCapacity,
		interval:  defaultFlushInterval,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		log:       logger.Get().Named("buffer"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.events = make([]model.PerformanceEvent, 0, b.capacity)
	return b
}

// Record appends one event. When the buffer is already at capacity the
// pending batch flushes first, so a full buffer holds exactly capacity
// events and the incoming event starts the next batch.
func (b *Buffer) Record(ctx context.Context, ev model.PerformanceEvent) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	var batch []model.PerformanceEvent
	if len(b.events) >= b.capacity {
		batch = b.swapLocked()
	}
	b.events = append(b.events, ev)
	metrics.UpdateBufferSize(len(b.events))
	b.mu.Unlock()

	if batch != nil {
		b.dispatch(ctx, batch, TriggerCapacity)
	}
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Run flushes on the configured interval until the context is canceled or
// Close is called.
func (b *Buffer) Run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.shutdown:
			return
		case <-ticker.C:
			b.Flush(ctx, TriggerInterval)
		}
	}
}

// Flush hands the pending batch to the deliverer. A flush with nothing
// pending is a no-op.
func (b *Buffer) Flush(ctx context.Context, trigger string) {
	b.mu.Lock()
	batch := b.swapLocked()
	b.mu.Unlock()

	if batch != nil {
		b.dispatch(ctx, batch, trigger)
	}
}

// Close stops the periodic loop and flushes whatever remains. Events
// recorded after Close are discarded.
func (b *Buffer) Close(ctx context.Context) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.shutdown)
	select {
	case <-b.done:
	case <-ctx.Done():
	}

	b.Flush(ctx, TriggerShutdown)
}

// swapLocked takes the pending batch, leaving a fresh slice. Must hold b.mu.
// Returns nil when nothing is pending.
func (b *Buffer) swapLocked() []model.PerformanceEvent {
	if len(b.events) == 0 {
		return nil
	}
	batch := b.events
	b.events = make([]model.PerformanceEvent, 0, b.capacity)
	metrics.UpdateBufferSize(0)
	return batch
}

// dispatch hands a batch to the deliverer without waiting on it.
func (b *Buffer) dispatch(ctx context.Context, batch []model.PerformanceEvent, trigger string) {
	metrics.RecordFlush(trigger)
	b.log.Debug(ctx, "flushing batch",
		logger.Int("events", len(batch)),
		logger.String("trigger", trigger),
	)
	go b.deliverer.Deliver(context.WithoutCancel(ctx), batch)
}
