// Package metrics provides Prometheus instrumentation for the beacon engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest and adapters
	samplesObserved *prometheus.CounterVec
	samplesDropped  *prometheus.CounterVec
	vitalValues     *prometheus.HistogramVec

	// Pipeline queue
	queueSize    prometheus.Gauge
	queueDropped prometheus.Counter

	// Buffer and delivery
	bufferSize        prometheus.Gauge
	flushes           *prometheus.CounterVec
	eventsDelivered   prometheus.Counter
	deliveryFailures  prometheus.Counter
	deliveryLatencyMS prometheus.Histogram

	// Budget enforcement
	violations         *prometheus.CounterVec
	alerts             *prometheus.CounterVec
	correctiveActions  prometheus.Counter
	sessionEscalations prometheus.Counter

	// Preload engine
	preloadEnqueued   *prometheus.CounterVec
	preloadDeduped    prometheus.Counter
	preloadDispatched *prometheus.CounterVec
	preloadFailures   prometheus.Counter
	preloadCancelled  prometheus.Counter
	preloadQueueDepth prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global manager on a custom registry so default Go collectors stay out of
// the scrape output.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "beacon",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initCollectors()
	return m
}

func (m *Manager) initCollectors() {
	auto := promauto.With(m.registry)

	m.samplesObserved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "samples_observed_total",
		Help: "Raw samples accepted by source adapters",
	}, []string{"adapter"})

	m.samplesDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "samples_dropped_total",
		Help: "Raw samples dropped by source adapters",
	}, []string{"adapter", "reason"})

	m.vitalValues = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "vital_value",
		Help:    "Observed metric values by metric name",
		Buckets: []float64{50, 100, 200, 400, 800, 1600, 2500, 4000, 8000, 16000},
	}, []string{"name"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pipeline_queue_size",
		Help: "Enriched metrics waiting for fan-out",
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pipeline_queue_dropped_total",
		Help: "Enriched metrics dropped due to pipeline backpressure",
	})

	m.bufferSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "buffer_size",
		Help: "Performance events currently buffered",
	})

	m.flushes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "buffer_flushes_total",
		Help: "Buffer flushes by trigger",
	}, []string{"trigger"})

	m.eventsDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_delivered_total",
		Help: "Performance events handed to the delivery transport",
	})

	m.deliveryFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "delivery_failures_total",
		Help: "Dropped telemetry batches (network error or non-2xx)",
	})

	m.deliveryLatencyMS = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "delivery_latency_milliseconds",
		Help:    "Telemetry batch delivery latency",
		Buckets: m.histogramBuckets,
	})

	m.violations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "budget_violations_total",
		Help: "Budget violations by metric and severity",
	}, []string{"metric", "severity"})

	m.alerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "alerts_dispatched_total",
		Help: "Alerts handed to the alerting sink by severity",
	}, []string{"severity"})

	m.correctiveActions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "corrective_actions_total",
		Help: "Corrective-action hooks invoked on high-severity violations",
	})

	m.sessionEscalations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "session_escalations_total",
		Help: "Violation bursts that escalated the whole session",
	})

	m.preloadEnqueued = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "preload_enqueued_total",
		Help: "Preload tasks enqueued by trigger source",
	}, []string{"trigger"})

	m.preloadDeduped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "preload_deduped_total",
		Help: "Preload candidates skipped because the path was already seen",
	})

	m.preloadDispatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "preload_dispatched_total",
		Help: "Preload tasks dispatched by priority",
	}, []string{"priority"})

	m.preloadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "preload_failures_total",
		Help: "Preload hint dispatches that failed (non-fatal)",
	})

	m.preloadCancelled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "preload_cancelled_total",
		Help: "Queued preload tasks cancelled before dispatch",
	})

	m.preloadQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "preload_queue_depth",
		Help: "Preload tasks awaiting dispatch",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Collector HTTP requests",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "Collector HTTP request duration",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Heap bytes in use",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Current goroutine count",
	})
}

// Package-level helpers on the global manager.

func RecordSampleObserved(adapter string) {
	globalManager.samplesObserved.WithLabelValues(adapter).Inc()
}

func RecordSampleDropped(adapter, reason string) {
	globalManager.samplesDropped.WithLabelValues(adapter, reason).Inc()
}

func ObserveVital(name string, value float64) {
	globalManager.vitalValues.WithLabelValues(name).Observe(value)
}

func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

func UpdateBufferSize(size int) {
	globalManager.bufferSize.Set(float64(size))
}

func RecordFlush(trigger string) {
	globalManager.flushes.WithLabelValues(trigger).Inc()
}

func RecordEventsDelivered(count int) {
	globalManager.eventsDelivered.Add(float64(count))
}

func RecordDeliveryFailure() {
	globalManager.deliveryFailures.Inc()
}

func RecordDeliveryLatency(latencyMS float64) {
	globalManager.deliveryLatencyMS.Observe(latencyMS)
}

func RecordViolation(metric, severity string) {
	globalManager.violations.WithLabelValues(metric, severity).Inc()
}

func RecordAlert(severity string) {
	globalManager.alerts.WithLabelValues(severity).Inc()
}

func RecordCorrectiveAction() {
	globalManager.correctiveActions.Inc()
}

func RecordSessionEscalation() {
	globalManager.sessionEscalations.Inc()
}

func RecordPreloadEnqueued(trigger string) {
	globalManager.preloadEnqueued.WithLabelValues(trigger).Inc()
}

func RecordPreloadDeduped() {
	globalManager.preloadDeduped.Inc()
}

func RecordPreloadDispatched(priority string) {
	globalManager.preloadDispatched.WithLabelValues(priority).Inc()
}

func RecordPreloadFailure() {
	globalManager.preloadFailures.Inc()
}

func RecordPreloadCancelled() {
	globalManager.preloadCancelled.Inc()
}

func UpdatePreloadQueueDepth(depth int) {
	globalManager.preloadQueueDepth.Set(float64(depth))
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMS float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMS)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry exposes the custom registry for the /healthz scrape handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
