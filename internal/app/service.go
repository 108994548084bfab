// Package service wires the collection pipeline and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beaconkit/beacon/internal/adapters/repository"
	"github.com/beaconkit/beacon/internal/adapters/source"
	"github.com/beaconkit/beacon/internal/alert"
	"github.com/beaconkit/beacon/internal/buffer"
	"github.com/beaconkit/beacon/internal/domain/budget"
	"github.com/beaconkit/beacon/internal/domain/dedupe"
	"github.com/beaconkit/beacon/internal/domain/enrich"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/internal/domain/predict"
	"github.com/beaconkit/beacon/internal/pipeline"
	"github.com/beaconkit/beacon/internal/preload"
	"github.com/beaconkit/beacon/pkg/logger"
)

// Service owns every pipeline component and their lifecycles.
type Service struct {
	mu sync.RWMutex

	// Components, built on Start.
	registry   *source.Registry
	enricher   *enrich.Enricher
	queue      pipeline.Queue
	dispatcher *pipeline.Dispatcher
	buf        *buffer.Buffer
	store      repository.Store
	validator  *budget.Validator
	predictor  predict.Predictor
	engine     *preload.Engine
	hintStore  *preload.HintStore

	// Configuration.
	budgets        map[string]budget.Budget
	severity       budget.SeverityPolicy
	burstThreshold int
	burstWindow    time.Duration
	retention      time.Duration
	bufferCapacity int
	flushInterval  time.Duration
	queueSize      int
	dedupeSize     int
	preloadCaps    map[model.ConnectionClass]int
	fastProb       float64
	moderateProb   float64
	hoverIntent    time.Duration
	buildVersion   string
	deliverer      buffer.Deliverer
	sink           alert.Sink

	// State.
	started     bool
	unsubscribe func()
	cancel      context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		budgets: map[string]budget.Budget{
			"lcp":  {Threshold: 2500, Unit: "ms"},
			"inp":  {Threshold: 200, Unit: "ms"},
			"cls":  {Threshold: 0.1, Unit: "score"},
			"ttfb": {Threshold: 800, Unit: "ms"},
		},
		severity:       budget.DefaultSeverityPolicy(),
		burstThreshold: 10,
		burstWindow:    time.Minute,
		retention:      24 * time.Hour,
		bufferCapacity: 100,
		flushInterval:  5 * time.Second,
		queueSize:      10000,
		dedupeSize:     4096,
		fastProb:       0.7,
		moderateProb:   0.4,
		hoverIntent:    65 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and launches the pipeline. Misconfigured budgets fail here,
// before any traffic is accepted.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting collector service...")

	table, err := budget.NewTable(s.budgets)
	if err != nil {
		return fmt.Errorf("budget configuration: %w", err)
	}

	s.store = repository.NewMemStore(repository.WithRetention(s.retention))
	if s.sink == nil {
		s.sink = alert.NewLogSink(s.logger.Named("alert"))
	}
	s.validator = budget.NewValidator(table, s.store, s.sink,
		budget.WithSeverityPolicy(s.severity),
		budget.WithBurstPolicy(s.burstThreshold, s.burstWindow),
	)

	if s.deliverer == nil {
		s.deliverer = noopDeliverer{}
	}
	s.buf = buffer.New(s.deliverer,
		buffer.WithCapacity(s.bufferCapacity),
		buffer.WithFlushInterval(s.flushInterval),
	)

	s.queue = pipeline.NewInMemoryQueue(pipeline.WithCapacity(s.queueSize))
	s.dispatcher = pipeline.NewDispatcher(s.queue, []pipeline.Consumer{
		func(ctx context.Context, em model.EnrichedMetric) {
			s.buf.Record(ctx, model.EventFromMetric(em))
		},
		func(ctx context.Context, em model.EnrichedMetric) {
			s.validator.Validate(ctx, em)
		},
	})

	s.enricher = enrich.New(enrich.RequestSource{}, enrich.WithBuildVersion(s.buildVersion))

	s.registry = source.NewRegistry()
	s.registry.Register(ctx, source.NewVitalsAdapter())
	s.registry.Register(ctx, source.NewNavigationAdapter())
	s.registry.Register(ctx, source.NewResourceAdapter())
	s.registry.Register(ctx, source.NewLongTaskAdapter())
	s.registry.Register(ctx, source.NewInteractionAdapter())
	s.unsubscribe = s.registry.Subscribe(s.handleMetric)

	s.predictor = predict.NewTransitionModel()
	s.hintStore = preload.NewHintStore()

	engineOpts := []preload.Option{
		preload.WithProbabilityCutoffs(s.fastProb, s.moderateProb),
		preload.WithHoverIntent(s.hoverIntent),
	}
	if s.preloadCaps != nil {
		engineOpts = append(engineOpts, preload.WithDispatchCaps(s.preloadCaps))
	}
	s.engine = preload.NewEngine(
		dedupe.NewPathSet(dedupe.WithMaxSize(s.dedupeSize)),
		s.hintStore,
		engineOpts...,
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.dispatcher.Run(runCtx)
	go s.buf.Run(runCtx)
	go s.engine.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "collector service started",
		logger.Int("budgets", table.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("bufferCapacity", s.bufferCapacity),
		logger.Duration("flushInterval", s.flushInterval),
	)
	return nil
}

// Stop drains and shuts down the pipeline. The buffer's remainder flushes
// on the way out.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping collector service...")

	s.unsubscribe()
	s.engine.Stop(ctx)
	_ = s.queue.Close()
	if err := s.dispatcher.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "dispatcher did not drain", logger.Error(err))
	}
	s.buf.Close(ctx)
	_ = s.store.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "collector service stopped")
}

// handleMetric carries each normalized metric through enrichment into the
// queue. A full queue drops the metric rather than blocking ingestion.
func (s *Service) handleMetric(ctx context.Context, m model.Metric) {
	em := s.enricher.Enrich(ctx, m)
	if !s.queue.Enqueue(ctx, em) {
		s.logger.Debug(ctx, "pipeline queue full, metric dropped",
			logger.String("metric", string(m.Name)),
		)
	}
}

// Ingest dispatches a page's raw samples. The page context rides the
// request context so enrichment sees it downstream.
func (s *Service) Ingest(ctx context.Context, pctx model.PageContext, samples []source.Sample) {
	ctx = enrich.WithPageContext(ctx, pctx)
	for _, sample := range samples {
		s.registry.Dispatch(ctx, sample)
	}
}

// Navigated records a route transition and enqueues preloads for the
// routes the model now expects next.
func (s *Service) Navigated(ctx context.Context, pctx model.PageContext, from, to string) {
	s.predictor.RecordNavigation(ctx, from, to)
	for _, p := range s.predictor.Predict(ctx, to) {
		s.engine.OnPredictedRoute(ctx, pctx, p)
	}
}

// ViewportApproach feeds a viewport-proximity trigger.
func (s *Service) ViewportApproach(ctx context.Context, pctx model.PageContext, path string) {
	s.engine.OnViewportProximity(ctx, pctx, path)
}

// PointerIntent feeds a sustained-hover trigger.
func (s *Service) PointerIntent(ctx context.Context, pctx model.PageContext, path string, hover time.Duration) {
	s.engine.OnPointerIntent(ctx, pctx, path, hover)
}

// FocusIntent feeds a keyboard-focus trigger.
func (s *Service) FocusIntent(ctx context.Context, pctx model.PageContext, path string) {
	s.engine.OnFocusIntent(ctx, pctx, path)
}

// CancelPreload withdraws a queued preload whose target is already
// satisfied.
func (s *Service) CancelPreload(ctx context.Context, path string) {
	s.engine.Cancel(ctx, path)
}

// Hints returns and consumes the pending preload hints for a session.
func (s *Service) Hints(ctx context.Context, sessionID string) []model.PreloadTask {
	return s.hintStore.Take(ctx, sessionID)
}

// Report aggregates budget violations over the trailing window.
func (s *Service) Report(ctx context.Context, window time.Duration) budget.Report {
	return s.validator.Report(ctx, window)
}

// RegisterAction installs a corrective hook for a metric name.
func (s *Service) RegisterAction(name model.MetricName, fn budget.Action) {
	s.validator.RegisterAction(name, fn)
}

// GetStats returns service counters for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started": s.started,
	}
	if s.started {
		preloadStats := s.engine.Stats()
		stats["queue_length"] = s.queue.Len(ctx)
		stats["buffered_events"] = s.buf.Len()
		stats["violations_retained"] = s.store.Count(ctx)
		stats["adapters"] = s.registry.Kinds()
		stats["preload"] = preloadStats
	}
	return stats
}

// noopDeliverer discards batches. Used when no telemetry backend is
// configured.
type noopDeliverer struct{}

func (noopDeliverer) Deliver(context.Context, []model.PerformanceEvent) {}
