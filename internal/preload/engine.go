// Package preload ranks and dispatches speculative resource loads.
//
// Three trigger sources feed the engine: route predictions, viewport
// proximity, and pointer or focus intent. Tasks dedupe by resolved path,
// sort by priority on each dispatch pass, and dispatch under a cap set by
// the current network condition. Dispatch produces a passive resource hint,
// never a forced fetch.
package preload

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/beaconkit/beacon/internal/domain/dedupe"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/internal/domain/predict"
	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// Default engine policy.
const (
	defaultFastProbability     = 0.7
	defaultModerateProbability = 0.4
	defaultHoverIntent         = 65 * time.Millisecond
	defaultPassInterval        = 200 * time.Millisecond
	defaultDispatchRate        = 20 // hints per second across all sessions
)

// defaultCaps bounds dispatches per pass by connection class.
var defaultCaps = map[model.ConnectionClass]int{
	model.Connection4G:      3,
	model.Connection3G:      1,
	model.Connection2G:      0,
	model.ConnectionSlow2G:  0,
	model.ConnectionUnknown: 1,
}

// Hinter materializes one dispatched task as a passive resource hint.
type Hinter interface {
	Hint(ctx context.Context, task model.PreloadTask) error
}

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	Queued     int   `json:"queued"`
	Dispatched int64 `json:"dispatched"`
	Failed     int64 `json:"failed"`
	Deduped    int64 `json:"deduped"`
	Cancelled  int64 `json:"cancelled"`
}

// Engine owns the preload task queue.
type Engine struct {
	deduper dedupe.Deduper
	hinter  Hinter

	fastProb     float64
	moderateProb float64
	hoverIntent  time.Duration
	caps         map[model.ConnectionClass]int
	limiter      *rate.Limiter
	passInterval time.Duration

	mu       sync.Mutex
	queue    []model.PreloadTask
	lastConn model.ConnectionClass
	stats    Stats

	shutdown chan struct{}
	done     chan struct{}

	now func() time.Time
	log logger.Logger
}

// NewEngine creates a preload engine dispatching through the hinter.
func NewEngine(d dedupe.Deduper, h Hinter, opts ...Option) *Engine {
	e := &Engine{
		deduper:      d,
		hinter:       h,
		fastProb:     defaultFastProbability,
		moderateProb: defaultModerateProbability,
		hoverIntent:  defaultHoverIntent,
		caps:         defaultCaps,
		limiter:      rate.NewLimiter(rate.Limit(defaultDispatchRate), defaultDispatchRate),
		passInterval: defaultPassInterval,
		lastConn:     model.ConnectionUnknown,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		now:          time.Now,
		log:          logger.Get().Named("preload"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnPredictedRoute enqueues a predicted navigation. High priority needs a
// confident prediction on a fast network; a moderate network only accepts
// mid-confidence predictions at low priority. Everything else is skipped.
func (e *Engine) OnPredictedRoute(ctx context.Context, pctx model.PageContext, p predict.Prediction) {
	switch {
	case p.Probability > e.fastProb && pctx.Connection.Fast():
		e.enqueue(ctx, pctx, p.Path, model.PriorityHigh, model.TriggerPrediction)
	case p.Probability > e.moderateProb && pctx.Connection.Moderate():
		e.enqueue(ctx, pctx, p.Path, model.PriorityLow, model.TriggerPrediction)
	}
}

// OnViewportProximity enqueues an element entering the viewport margin.
func (e *Engine) OnViewportProximity(ctx context.Context, pctx model.PageContext, path string) {
	e.enqueue(ctx, pctx, path, model.PriorityMedium, model.TriggerViewport)
}

// OnPointerIntent enqueues a hover target once the hover has been sustained
// long enough to signal intent.
func (e *Engine) OnPointerIntent(ctx context.Context, pctx model.PageContext, path string, hover time.Duration) {
	if hover < e.hoverIntent {
		return
	}
	e.enqueue(ctx, pctx, path, model.PriorityHigh, model.TriggerPointer)
}

// OnFocusIntent enqueues a keyboard-focused target.
func (e *Engine) OnFocusIntent(ctx context.Context, pctx model.PageContext, path string) {
	e.enqueue(ctx, pctx, path, model.PriorityMedium, model.TriggerFocus)
}

// Cancel removes a queued task whose target was satisfied by other means.
// The path stays in the dedup set.
func (e *Engine) Cancel(_ context.Context, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.queue[:0]
	for _, task := range e.queue {
		if task.Path == path {
			e.stats.Cancelled++
			metrics.RecordPreloadCancelled()
			continue
		}
		kept = append(kept, task)
	}
	e.queue = kept
	metrics.UpdatePreloadQueueDepth(len(e.queue))
}

// ProcessPass sorts the queue and dispatches up to the network-condition
// cap. Undispatched tasks stay queued for the next pass.
func (e *Engine) ProcessPass(ctx context.Context) {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}

	sort.SliceStable(e.queue, func(i, j int) bool {
		if e.queue[i].Priority != e.queue[j].Priority {
			return e.queue[i].Priority > e.queue[j].Priority
		}
		return e.queue[i].Timestamp.Before(e.queue[j].Timestamp)
	})

	limit := e.caps[e.lastConn]
	if limit > len(e.queue) {
		limit = len(e.queue)
	}

	var batch []model.PreloadTask
	for len(batch) < limit && e.limiter.Allow() {
		batch = append(batch, e.queue[0])
		e.queue = e.queue[1:]
	}
	metrics.UpdatePreloadQueueDepth(len(e.queue))
	e.mu.Unlock()

	for _, task := range batch {
		e.dispatch(ctx, task)
	}
}

// Run executes dispatch passes on a fixed cadence until Stop or context
// cancellation.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.passInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.shutdown:
			return
		case <-ticker.C:
			e.ProcessPass(ctx)
		}
	}
}

// Stop halts the pass loop. Queued tasks are abandoned.
func (e *Engine) Stop(ctx context.Context) {
	close(e.shutdown)
	select {
	case <-e.done:
	case <-ctx.Done():
	}
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.Queued = len(e.queue)
	return s
}

func (e *Engine) enqueue(ctx context.Context, pctx model.PageContext, path string, prio model.Priority, trigger model.PreloadTrigger) {
	if path == "" {
		return
	}

	if e.deduper.SeenAndRecord(ctx, path) {
		e.mu.Lock()
		e.stats.Deduped++
		e.mu.Unlock()
		metrics.RecordPreloadDeduped()
		return
	}

	task := model.PreloadTask{
		Path:             path,
		Priority:         prio,
		Trigger:          trigger,
		SessionID:        pctx.SessionID,
		Timestamp:        e.now(),
		NetworkAtEnqueue: pctx.Connection,
	}

	e.mu.Lock()
	e.queue = append(e.queue, task)
	e.lastConn = pctx.Connection
	depth := len(e.queue)
	e.mu.Unlock()

	metrics.RecordPreloadEnqueued(string(trigger))
	metrics.UpdatePreloadQueueDepth(depth)
}

// dispatch hands one task to the hinter. A failed hint frees the path so a
// later trigger may enqueue it again.
func (e *Engine) dispatch(ctx context.Context, task model.PreloadTask) {
	if err := e.hinter.Hint(ctx, task); err != nil {
		e.log.Warn(ctx, "hint dispatch failed",
			logger.String("path", task.Path),
			logger.Error(err),
		)
		e.deduper.Unrecord(ctx, task.Path)
		e.mu.Lock()
		e.stats.Failed++
		e.mu.Unlock()
		metrics.RecordPreloadFailure()
		return
	}

	e.mu.Lock()
	e.stats.Dispatched++
	e.mu.Unlock()
	metrics.RecordPreloadDispatched(task.Priority.String())
}
