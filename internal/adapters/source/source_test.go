package source

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// collector gathers emitted metrics for assertions.
type collector struct {
	mu      sync.Mutex
	metrics []model.Metric
}

func (c *collector) handle(_ context.Context, m model.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

func (c *collector) all() []model.Metric {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Metric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

func TestVitalsAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewVitalsAdapter()
	c := &collector{}
	a.Subscribe(c.handle)

	a.Observe(ctx, Sample{Kind: KindVitals, Name: "lcp", Value: 3000, EpochMS: 1700000000000})
	a.Observe(ctx, Sample{Kind: KindVitals, Name: "bogus", Value: 10})
	a.Observe(ctx, Sample{Kind: KindVitals, Name: "cls", Value: -1})

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(got))
	}
	if got[0].Name != model.MetricLCP {
		t.Errorf("expected lcp, got %s", got[0].Name)
	}
	if got[0].Rating != model.RatingNeedsImprovement {
		t.Errorf("expected needs-improvement rating, got %s", got[0].Rating)
	}
	if got[0].Unit != "ms" {
		t.Errorf("expected default ms unit, got %q", got[0].Unit)
	}
}

func TestVitalsCapabilityGating(t *testing.T) {
	ctx := context.Background()
	a := NewVitalsAdapter(WithCapabilities(CapabilitySet{model.MetricLCP: {}}))
	c := &collector{}
	a.Subscribe(c.handle)

	a.Observe(ctx, Sample{Kind: KindVitals, Name: "inp", Value: 300})
	a.Observe(ctx, Sample{Kind: KindVitals, Name: "lcp", Value: 2000})

	got := c.all()
	if len(got) != 1 || got[0].Name != model.MetricLCP {
		t.Fatalf("expected only lcp to pass the capability gate, got %v", got)
	}
}

func TestNavigationOncePerLoad(t *testing.T) {
	ctx := context.Background()
	a := NewNavigationAdapter()
	c := &collector{}
	a.Subscribe(c.handle)

	s := Sample{
		Kind:  KindNavigation,
		Value: 450,
		Path:  "/checkout",
		Attrs: map[string]string{"session_id": "s1"},
	}
	a.Observe(ctx, s)
	a.Observe(ctx, s)

	if n := len(c.all()); n != 1 {
		t.Fatalf("expected duplicate load suppressed, got %d metrics", n)
	}
	if got := c.all()[0]; got.Name != model.MetricTTFB || got.Value != 450 {
		t.Errorf("unexpected metric %+v", got)
	}

	// A different session for the same path is a fresh load.
	s.Attrs = map[string]string{"session_id": "s2"}
	a.Observe(ctx, s)
	if n := len(c.all()); n != 2 {
		t.Fatalf("expected fresh session to emit, got %d metrics", n)
	}
}

func TestLongTaskThreshold(t *testing.T) {
	ctx := context.Background()
	a := NewLongTaskAdapter()
	c := &collector{}
	a.Subscribe(c.handle)

	a.Observe(ctx, Sample{Kind: KindLongTask, Value: 49})
	a.Observe(ctx, Sample{Kind: KindLongTask, Value: 120})

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("expected sub-threshold task dropped, got %d metrics", len(got))
	}
	if got[0].Name != model.MetricLongTask || got[0].Value != 120 {
		t.Errorf("unexpected metric %+v", got[0])
	}
}

func TestResourceSlowStreak(t *testing.T) {
	ctx := context.Background()
	a := NewResourceAdapter()
	c := &collector{}
	a.Subscribe(c.handle)

	a.Observe(ctx, Sample{Kind: KindResource, Value: 200, Path: "/assets/app.js"})
	a.Observe(ctx, Sample{Kind: KindResource, Value: 1500, Path: "/assets/hero.jpg"})
	a.Observe(ctx, Sample{Kind: KindResource, Value: 2500, Path: "/assets/video.mp4"})

	got := c.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 metrics, got %d", len(got))
	}
	if got[0].Attrs["slow_streak"] == "true" {
		t.Error("first fast load should not be marked slow")
	}
	if got[2].Attrs["slow_streak"] != "true" {
		t.Error("expected slow_streak once most of the window is slow")
	}
	if got[1].Attrs["path"] != "/assets/hero.jpg" {
		t.Errorf("expected path attr, got %v", got[1].Attrs)
	}
}

func TestResourceMissingPathDropped(t *testing.T) {
	ctx := context.Background()
	a := NewResourceAdapter()
	c := &collector{}
	a.Subscribe(c.handle)

	a.Observe(ctx, Sample{Kind: KindResource, Value: 100})

	if n := len(c.all()); n != 0 {
		t.Fatalf("expected pathless sample dropped, got %d metrics", n)
	}
}

func TestRageClickDetection(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	a := NewInteractionAdapter(WithInteractionClock(func() time.Time { return now }))
	c := &collector{}
	a.Subscribe(c.handle)

	click := Sample{Kind: KindInteraction, Name: "click", Attrs: map[string]string{"target": "#buy"}}

	a.Observe(ctx, click)
	now = now.Add(200 * time.Millisecond)
	a.Observe(ctx, click)
	if n := len(c.all()); n != 0 {
		t.Fatalf("two clicks should not trigger, got %d metrics", n)
	}

	now = now.Add(200 * time.Millisecond)
	a.Observe(ctx, click)

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("expected rage click emitted, got %d metrics", len(got))
	}
	if got[0].Attrs["event"] != "rage_click" || got[0].Attrs["target"] != "#buy" {
		t.Errorf("unexpected attrs %v", got[0].Attrs)
	}

	// Cooldown suppresses the continuing burst.
	now = now.Add(100 * time.Millisecond)
	a.Observe(ctx, click)
	a.Observe(ctx, click)
	a.Observe(ctx, click)
	if n := len(c.all()); n != 1 {
		t.Fatalf("cooldown should suppress repeats, got %d metrics", n)
	}

	// After cooldown a new burst triggers again.
	now = now.Add(rageClickCooldown + time.Second)
	for i := 0; i < rageClickCount; i++ {
		a.Observe(ctx, click)
	}
	if n := len(c.all()); n != 2 {
		t.Fatalf("expected second rage click after cooldown, got %d metrics", n)
	}
}

func TestFunnelEvents(t *testing.T) {
	ctx := context.Background()
	a := NewInteractionAdapter()
	c := &collector{}
	a.Subscribe(c.handle)

	a.Observe(ctx, Sample{
		Kind:  KindInteraction,
		Name:  "funnel:add_to_cart",
		Value: 1,
		Attrs: map[string]string{"sku": "A-17"},
	})

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("expected funnel metric, got %d", len(got))
	}
	if got[0].Name != model.MetricCustom {
		t.Errorf("expected custom metric, got %s", got[0].Name)
	}
	if got[0].Attrs["event"] != "funnel:add_to_cart" || got[0].Attrs["sku"] != "A-17" {
		t.Errorf("unexpected attrs %v", got[0].Attrs)
	}
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(ctx, NewVitalsAdapter())
	r.Register(ctx, NewLongTaskAdapter())

	c := &collector{}
	unsub := r.Subscribe(c.handle)

	r.Dispatch(ctx, Sample{Kind: KindVitals, Name: "fcp", Value: 900})
	r.Dispatch(ctx, Sample{Kind: "mystery", Value: 1})
	r.Dispatch(ctx, Sample{Kind: KindLongTask, Value: 80})

	if n := len(c.all()); n != 2 {
		t.Fatalf("expected 2 metrics routed, got %d", n)
	}

	unsub()
	r.Dispatch(ctx, Sample{Kind: KindVitals, Name: "fcp", Value: 900})
	if n := len(c.all()); n != 2 {
		t.Fatalf("expected no metrics after unsubscribe, got %d", n)
	}
}

func TestRegistrySkipsUnavailableAdapter(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(ctx, &VitalsAdapter{})
	r.Register(ctx, NewLongTaskAdapter())

	kinds := r.Kinds()
	if len(kinds) != 1 || kinds[0] != KindLongTask {
		t.Fatalf("expected failed probe to leave adapter unregistered, got %v", kinds)
	}
}
