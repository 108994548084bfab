package preload

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Option configures an Engine.
type Option func(*Engine)

// WithProbabilityCutoffs sets the prediction confidence cutoffs for fast
// and moderate networks.
func WithProbabilityCutoffs(fast, moderate float64) Option {
	return func(e *Engine) {
		if fast > 0 && fast <= 1 {
			e.fastProb = fast
		}
		if moderate > 0 && moderate <= 1 {
			e.moderateProb = moderate
		}
	}
}

// WithHoverIntent sets the sustained-hover floor for pointer intent.
func WithHoverIntent(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.hoverIntent = d
		}
	}
}

// WithDispatchCaps overrides the per-pass dispatch caps by connection
// class. Classes absent from the map dispatch nothing.
func WithDispatchCaps(caps map[model.ConnectionClass]int) Option {
	return func(e *Engine) {
		if len(caps) > 0 {
			e.caps = caps
		}
	}
}

// WithDispatchRate sets the sustained hint dispatch rate per second.
func WithDispatchRate(perSecond int) Option {
	return func(e *Engine) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// WithPassInterval sets the dispatch pass cadence.
func WithPassInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.passInterval = d
		}
	}
}

// WithClock overrides the engine's clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
