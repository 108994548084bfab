// Package repository defines the rolling violation log and its errors.
package repository

import (
	"context"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Store provides append-only access to the time-windowed violation log.
// Violations are never mutated after creation; eviction removes entries
// older than the configured retention.
type Store interface {
	// Append records a violation. Returns ErrClosed after Close.
	Append(ctx context.Context, v model.Violation) error

	// Window returns violations with Timestamp >= since, oldest first.
	Window(ctx context.Context, since time.Time) []model.Violation

	// Count returns the number of retained violations.
	Count(ctx context.Context) int

	// Evict drops violations older than before and returns how many went.
	Evict(ctx context.Context, before time.Time) int

	// Close releases the store. Further appends fail.
	Close() error
}
