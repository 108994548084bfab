package budget

import (
	"time"

	"github.com/beaconkit/beacon/pkg/logger"
)

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithSeverityPolicy overrides the ratio cutoffs.
func WithSeverityPolicy(p SeverityPolicy) Option {
	return func(v *Validator) {
		if p.MediumRatio > 1 && p.HighRatio > p.MediumRatio {
			v.policy = p
		}
	}
}

// WithBurstPolicy overrides the session escalation burst threshold and
// window.
func WithBurstPolicy(threshold int, window time.Duration) Option {
	return func(v *Validator) {
		if threshold > 0 && window > 0 {
			v.burst = newBurstTracker(threshold, window)
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}
