// Package pipeline moves enriched metrics from the ingest path to the
// telemetry and validation consumers.
//
// A bounded in-memory queue decouples sample ingestion from downstream
// work; a single dispatcher drains it so consumers see metrics in emission
// order.
package pipeline

import (
	"context"
	"sync"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a metric to the queue. Returns false if the queue is
	// full or closed; the metric is dropped, never blocked on.
	Enqueue(ctx context.Context, em model.EnrichedMetric) bool

	// Dequeue returns the channel metrics arrive on. The channel is closed
	// when the queue is closed.
	Dequeue(ctx context.Context) <-chan model.EnrichedMetric

	// Len returns the current number of queued metrics.
	Len(ctx context.Context) int

	// Close stops the queue. Queued metrics already in flight still drain.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	items    chan model.EnrichedMetric
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// QueueOption configures an InMemoryQueue.
type QueueOption func(*InMemoryQueue)

// WithCapacity sets the queue bound.
func WithCapacity(n int) QueueOption {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...QueueOption) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan model.EnrichedMetric, q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a metric to the queue.
func (q *InMemoryQueue) Enqueue(_ context.Context, em model.EnrichedMetric) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDropped()
		return false
	}

	select {
	case q.items <- em:
		metrics.UpdateQueueSize(len(q.items))
		return true
	default:
		metrics.RecordQueueDropped()
		return false
	}
}

// Dequeue returns the channel metrics arrive on.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan model.EnrichedMetric {
	return q.items
}

// Len returns the current number of queued metrics.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.items)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
