// Package dedupe tracks resolved resource paths so the preload engine
// dispatches each target at most once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen paths to guarantee at-most-once speculative loading.
type Deduper interface {
	// SeenAndRecord atomically checks whether path was seen and records it
	// if not. Returns true if the path was already seen.
	SeenAndRecord(ctx context.Context, path string) bool

	// Unrecord removes a path, allowing it to be enqueued again. Used when
	// a recorded task failed to enter the queue.
	Unrecord(ctx context.Context, path string)

	// Size returns the number of tracked paths.
	Size() int
}

// pathSet implements Deduper with a bounded map plus insertion-ordered
// ring for FIFO eviction. Bounded memory takes priority over perfect
// dedup history: once full, the oldest entry is forgotten and its path may
// be preloaded again.
type pathSet struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	maxSize int
}

const defaultMaxSize = 4096

// Option applies a configuration option to the path set.
type Option func(*pathSet)

// WithMaxSize bounds the number of tracked paths.
func WithMaxSize(n int) Option {
	return func(p *pathSet) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// NewPathSet creates a bounded dedup set.
func NewPathSet(opts ...Option) Deduper {
	p := &pathSet{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(p)
	}
	p.seen = make(map[string]struct{}, p.maxSize)
	p.order = make([]string, 0, p.maxSize)
	return p
}

func (p *pathSet) SeenAndRecord(_ context.Context, path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.seen[path]; ok {
		return true
	}

	if len(p.seen) >= p.maxSize {
		p.evictOldest()
	}
	p.seen[path] = struct{}{}
	p.order = append(p.order, path)
	return false
}

func (p *pathSet) Unrecord(_ context.Context, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, path)
	// The order ring keeps a stale entry; evictOldest skips entries that
	// are no longer in the map.
}

func (p *pathSet) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

// evictOldest drops the oldest live entry. Must hold p.mu.
func (p *pathSet) evictOldest() {
	for p.head < len(p.order) {
		candidate := p.order[p.head]
		p.head++
		if _, ok := p.seen[candidate]; ok {
			delete(p.seen, candidate)
			break
		}
	}
	// Compact the ring once the dead prefix dominates.
	if p.head > 0 && p.head*2 >= len(p.order) {
		p.order = append(p.order[:0], p.order[p.head:]...)
		p.head = 0
	}
}
