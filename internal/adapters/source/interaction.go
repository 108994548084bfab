package source

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// Rage-click detection defaults.
const (
	rageClickCount    = 3
	rageClickWindow   = 1200 * time.Millisecond
	rageClickCooldown = 5 * time.Second
	clickStateLimit   = 512
)

// funnelPrefix marks custom business events on the interaction stream.
const funnelPrefix = "funnel:"

// clickPhase is the per-target rage-click state.
type clickPhase int

const (
	phaseIdle clickPhase = iota
	phaseCounting
	phaseCooldown
)

type clickState struct {
	phase     clickPhase
	count     int
	windowEnd time.Time
	coolUntil time.Time
}

// InteractionAdapter turns interaction samples into custom metrics. Click
// samples feed a per-target rage-click detector; funnel-prefixed samples
// pass through as business events.
type InteractionAdapter struct {
	emitter
	mu     sync.Mutex
	clicks map[string]*clickState
	now    func() time.Time
}

// InteractionOption configures the interaction adapter.
type InteractionOption func(*InteractionAdapter)

// WithInteractionClock overrides the adapter's clock.
func WithInteractionClock(now func() time.Time) InteractionOption {
	return func(a *InteractionAdapter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewInteractionAdapter creates an interaction adapter.
func NewInteractionAdapter(opts ...InteractionOption) *InteractionAdapter {
	a := &InteractionAdapter{
		clicks: make(map[string]*clickState),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *InteractionAdapter) Kind() string { return KindInteraction }

func (a *InteractionAdapter) Init(_ context.Context) error { return nil }

func (a *InteractionAdapter) Observe(ctx context.Context, s Sample) {
	switch {
	case strings.HasPrefix(s.Name, funnelPrefix):
		a.observeFunnel(ctx, s)
	case s.Name == "click":
		a.observeClick(ctx, s)
	default:
		metrics.RecordSampleDropped(KindInteraction, "unknown_interaction")
	}
}

func (a *InteractionAdapter) observeFunnel(ctx context.Context, s Sample) {
	m := model.NewMetric(model.MetricCustom, s.Value, "count", s.Time())
	m.Attrs = map[string]string{"event": s.Name}
	for k, v := range s.Attrs {
		m.Attrs[k] = v
	}
	metrics.RecordSampleObserved(KindInteraction)
	a.emit(ctx, m)
}

// observeClick advances the per-target state machine and emits a rage_click
// metric when the click count crosses the threshold inside the window. The
// cooldown keeps one frustrated burst from emitting more than once.
func (a *InteractionAdapter) observeClick(ctx context.Context, s Sample) {
	target := s.Attrs["target"]
	if target == "" {
		target = s.Path
	}
	if target == "" {
		metrics.RecordSampleDropped(KindInteraction, "missing_target")
		return
	}

	now := a.now()

	a.mu.Lock()
	st, ok := a.clicks[target]
	if !ok {
		if len(a.clicks) >= clickStateLimit {
			a.clicks = make(map[string]*clickState, clickStateLimit)
		}
		st = &clickState{}
		a.clicks[target] = st
	}

	var triggered int
	switch st.phase {
	case phaseCooldown:
		if now.Before(st.coolUntil) {
			break
		}
		st.phase = phaseIdle
		fallthrough
	case phaseIdle:
		st.phase = phaseCounting
		st.count = 1
		st.windowEnd = now.Add(rageClickWindow)
	case phaseCounting:
		if now.After(st.windowEnd) {
			st.count = 1
			st.windowEnd = now.Add(rageClickWindow)
			break
		}
		st.count++
		if st.count >= rageClickCount {
			triggered = st.count
			st.phase = phaseCooldown
			st.coolUntil = now.Add(rageClickCooldown)
			st.count = 0
		}
	}
	a.mu.Unlock()

	if triggered == 0 {
		return
	}

	m := model.NewMetric(model.MetricCustom, float64(triggered), "count", s.Time())
	m.Attrs = map[string]string{
		"event":  "rage_click",
		"target": target,
		"clicks": strconv.Itoa(triggered),
	}
	metrics.RecordSampleObserved(KindInteraction)
	a.emit(ctx, m)
}
