// Package predict ranks likely next navigations from observed transitions.
//
// The model is a first-order transition-frequency table: the probability of
// navigating from A to B is the share of observed departures from A that
// landed on B. Deliberately simple; the cutoff policy lives in the preload
// engine, not here.
package predict

import (
	"context"
	"sort"
	"sync"
)

// Prediction is one ranked navigation candidate.
type Prediction struct {
	Path        string
	Probability float64
}

// Predictor ranks likely next paths for a given origin path.
type Predictor interface {
	// RecordNavigation observes one from→to transition.
	RecordNavigation(ctx context.Context, from, to string)

	// Predict returns candidates ordered by descending probability.
	// Returns nil when the origin has fewer than the minimum observed
	// departures.
	Predict(ctx context.Context, from string) []Prediction
}

// Default model bounds.
const (
	defaultMaxFanout  = 8
	defaultMinSamples = 3
)

// transitionModel implements Predictor in memory.
type transitionModel struct {
	mu          sync.RWMutex
	transitions map[string]map[string]int
	departures  map[string]int
	maxFanout   int
	minSamples  int
}

// Option applies a configuration option to the model.
type Option func(*transitionModel)

// WithMaxFanout caps how many candidates Predict returns per origin.
func WithMaxFanout(n int) Option {
	return func(m *transitionModel) {
		if n > 0 {
			m.maxFanout = n
		}
	}
}

// WithMinSamples sets how many departures an origin needs before the model
// predicts anything for it.
func WithMinSamples(n int) Option {
	return func(m *transitionModel) {
		if n > 0 {
			m.minSamples = n
		}
	}
}

// NewTransitionModel creates an empty in-memory predictor.
func NewTransitionModel(opts ...Option) Predictor {
	m := &transitionModel{
		transitions: make(map[string]map[string]int),
		departures:  make(map[string]int),
		maxFanout:   defaultMaxFanout,
		minSamples:  defaultMinSamples,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *transitionModel) RecordNavigation(_ context.Context, from, to string) {
	if from == "" || to == "" || from == to {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dest, ok := m.transitions[from]
	if !ok {
		dest = make(map[string]int)
		m.transitions[from] = dest
	}
	dest[to]++
	m.departures[from]++
}

func (m *transitionModel) Predict(_ context.Context, from string) []Prediction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.departures[from]
	if total < m.minSamples {
		return nil
	}

	out := make([]Prediction, 0, len(m.transitions[from]))
	for to, count := range m.transitions[from] {
		out = append(out, Prediction{
			Path:        to,
			Probability: float64(count) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > m.maxFanout {
		out = out[:m.maxFanout]
	}
	return out
}
