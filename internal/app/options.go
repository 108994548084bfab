package service

import (
	"time"

	"github.com/beaconkit/beacon/internal/alert"
	"github.com/beaconkit/beacon/internal/buffer"
	"github.com/beaconkit/beacon/internal/domain/budget"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBudgets replaces the default budget table entries.
func WithBudgets(budgets map[string]budget.Budget) Option {
	return func(s *Service) {
		if len(budgets) > 0 {
			s.budgets = budgets
		}
	}
}

// WithSeverityPolicy sets the violation severity cutoffs.
func WithSeverityPolicy(p budget.SeverityPolicy) Option {
	return func(s *Service) {
		s.severity = p
	}
}

// WithBurstPolicy sets the session escalation burst threshold and window.
func WithBurstPolicy(threshold int, window time.Duration) Option {
	return func(s *Service) {
		if threshold > 0 && window > 0 {
			s.burstThreshold = threshold
			s.burstWindow = window
		}
	}
}

// WithViolationRetention sets how long violations stay queryable.
func WithViolationRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithBufferCapacity sets the telemetry buffer capacity.
func WithBufferCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bufferCapacity = n
		}
	}
}

// WithFlushInterval sets the telemetry flush interval.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.flushInterval = d
		}
	}
}

// WithQueueSize sets the pipeline queue bound.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize sets the preload dedup set bound.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithPreloadCaps sets the per-pass preload dispatch caps by connection
// class.
func WithPreloadCaps(caps map[model.ConnectionClass]int) Option {
	return func(s *Service) {
		if len(caps) > 0 {
			s.preloadCaps = caps
		}
	}
}

// WithProbabilityCutoffs sets the prediction confidence cutoffs.
func WithProbabilityCutoffs(fast, moderate float64) Option {
	return func(s *Service) {
		if fast > 0 && fast <= 1 {
			s.fastProb = fast
		}
		if moderate > 0 && moderate <= 1 {
			s.moderateProb = moderate
		}
	}
}

// WithHoverIntent sets the sustained-hover floor for pointer intent.
func WithHoverIntent(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.hoverIntent = d
		}
	}
}

// WithBuildVersion sets the fallback build version stamped onto metrics.
func WithBuildVersion(v string) Option {
	return func(s *Service) {
		s.buildVersion = v
	}
}

// WithTransport sets the delivery transport for flushed batches.
func WithTransport(d buffer.Deliverer) Option {
	return func(s *Service) {
		if d != nil {
			s.deliverer = d
		}
	}
}

// WithAlertSink sets the alert destination.
func WithAlertSink(sink alert.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
