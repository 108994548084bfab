package pipeline

import (
	"context"
	"fmt"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
)

// Consumer receives each dequeued metric. Consumers must not mutate the
// metric; each call hands them the same value on the dispatcher goroutine,
// so a slow consumer delays the whole stream.
type Consumer func(ctx context.Context, em model.EnrichedMetric)

// Dispatcher drains the queue on a single goroutine and fans each metric
// out to every consumer in registration order. One goroutine keeps
// per-source emission order intact for all consumers.
type Dispatcher struct {
	queue     Queue
	consumers []Consumer

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger overrides the dispatcher's logger.
func WithDispatcherLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDispatcher creates a dispatcher over the queue.
func NewDispatcher(q Queue, consumers []Consumer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		queue:     q,
		consumers: consumers,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		log:       logger.Get().Named("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drains the queue until the context is canceled, Shutdown is called,
// or the queue closes.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	items := d.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			d.drain(ctx, items)
			return
		case em, ok := <-items:
			if !ok {
				return
			}
			d.fanOut(ctx, em)
		}
	}
}

// Shutdown stops the dispatcher after the queue drains.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.shutdown)

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.log.Warn(ctx, "dispatcher shutdown timed out")
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

// drain consumes whatever is already queued without waiting for more.
func (d *Dispatcher) drain(ctx context.Context, items <-chan model.EnrichedMetric) {
	for {
		select {
		case em, ok := <-items:
			if !ok {
				return
			}
			d.fanOut(ctx, em)
		default:
			return
		}
	}
}

func (d *Dispatcher) fanOut(ctx context.Context, em model.EnrichedMetric) {
	for _, c := range d.consumers {
		c(ctx, em)
	}
}
