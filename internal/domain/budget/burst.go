package budget

import (
	"sync"
	"time"
)

// Burst defaults: more than 10 violations of any kind within a minute
// escalates the session.
const (
	defaultBurstThreshold = 10
	defaultBurstWindow    = time.Minute
)

// burstTracker counts violations inside a sliding window and fires once
// per window when the threshold is crossed. After firing it cools down
// until the window has drained, so one burst produces one escalation.
type burstTracker struct {
	mu        sync.Mutex
	times     []time.Time
	threshold int
	window    time.Duration
	coolUntil time.Time
}

func newBurstTracker(threshold int, window time.Duration) *burstTracker {
	return &burstTracker{threshold: threshold, window: window}
}

// record registers one violation at now and reports whether the session
// should escalate.
func (b *burstTracker) record(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := now.Add(-b.window)
	kept := b.times[:0]
	for _, t := range b.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.times = append(kept, now)

	if len(b.times) <= b.threshold {
		return false
	}
	if now.Before(b.coolUntil) {
		return false
	}
	b.coolUntil = now.Add(b.window)
	return true
}
