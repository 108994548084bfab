package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithNamespace("test"), WithSubsystem("unit"), WithRegistry(reg))
	if m == nil {
		t.Fatal("expected manager")
	}

	m.violations.WithLabelValues("lcp", "high").Inc()
	m.flushes.WithLabelValues("capacity").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}

func TestGlobalHelpersDoNotPanic(t *testing.T) {
	RecordSampleObserved("navigation")
	RecordSampleDropped("resource", "malformed")
	ObserveVital("lcp", 1200)
	UpdateQueueSize(3)
	RecordQueueDropped()
	UpdateBufferSize(10)
	RecordFlush("interval")
	RecordEventsDelivered(10)
	RecordDeliveryFailure()
	RecordDeliveryLatency(12.5)
	RecordViolation("lcp", "high")
	RecordAlert("high")
	RecordCorrectiveAction()
	RecordSessionEscalation()
	RecordPreloadEnqueued("prediction")
	RecordPreloadDeduped()
	RecordPreloadDispatched("high")
	RecordPreloadFailure()
	RecordPreloadCancelled()
	UpdatePreloadQueueDepth(2)
	RecordHTTPRequest("beacons", "POST", "202")
	RecordHTTPRequestDuration("beacons", "POST", "202", 3.2)
	UpdateSystemMemoryUsage(1 << 20)
	UpdateSystemGoroutineCount(8)

	if GetRegistry() == nil {
		t.Fatal("expected custom registry")
	}
}
