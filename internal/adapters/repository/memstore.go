package repository

import (
	"context"
	"sync"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Default retention for the rolling log.
const defaultRetention = 24 * time.Hour

// MemStore implements Store with an in-memory ordered slice. Entries are
// appended in arrival order and evicted lazily on append and on read.
type MemStore struct {
	mu         sync.RWMutex
	violations []model.Violation
	retention  time.Duration
	now        func() time.Time
	closed     bool
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithRetention bounds how long violations are retained.
func WithRetention(d time.Duration) Option {
	return func(s *MemStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an in-memory violation log.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		retention: defaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append implements Store.
func (s *MemStore) Append(_ context.Context, v model.Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.evictLocked(s.now().Add(-s.retention))
	s.violations = append(s.violations, v)
	return nil
}

// Window implements Store.
func (s *MemStore) Window(_ context.Context, since time.Time) []model.Violation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Entries are in arrival order; scan from the back for the cutoff.
	start := len(s.violations)
	for start > 0 && !s.violations[start-1].Timestamp.Before(since) {
		start--
	}
	out := make([]model.Violation, len(s.violations)-start)
	copy(out, s.violations[start:])
	return out
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.violations)
}

// Evict implements Store.
func (s *MemStore) Evict(_ context.Context, before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(before)
}

func (s *MemStore) evictLocked(before time.Time) int {
	cut := 0
	for cut < len(s.violations) && s.violations[cut].Timestamp.Before(before) {
		cut++
	}
	if cut == 0 {
		return 0
	}
	s.violations = append([]model.Violation(nil), s.violations[cut:]...)
	return cut
}

// Close implements Store.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.violations = nil
	return nil
}
