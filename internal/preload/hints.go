package preload

import (
	"context"
	"sync"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Hint store bounds.
const (
	defaultHintsPerSession = 32
	defaultSessionLimit    = 2048
)

// HintStore implements Hinter by recording dispatched tasks per session.
// Pages poll their session's hints and apply them as <link rel="prefetch">
// style resource hints client-side.
type HintStore struct {
	mu          sync.Mutex
	hints       map[string][]model.PreloadTask
	perSession  int
	sessionCap  int
}

// HintStoreOption configures a HintStore.
type HintStoreOption func(*HintStore)

// WithHintsPerSession bounds retained hints per session.
func WithHintsPerSession(n int) HintStoreOption {
	return func(s *HintStore) {
		if n > 0 {
			s.perSession = n
		}
	}
}

// NewHintStore creates an empty hint store.
func NewHintStore(opts ...HintStoreOption) *HintStore {
	s := &HintStore{
		hints:      make(map[string][]model.PreloadTask),
		perSession: defaultHintsPerSession,
		sessionCap: defaultSessionLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hint records the task under its session.
func (s *HintStore) Hint(_ context.Context, task model.PreloadTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hints[task.SessionID]; !ok && len(s.hints) >= s.sessionCap {
		s.hints = make(map[string][]model.PreloadTask, s.sessionCap)
	}

	list := append(s.hints[task.SessionID], task)
	if len(list) > s.perSession {
		list = list[len(list)-s.perSession:]
	}
	s.hints[task.SessionID] = list
	return nil
}

// Take returns and clears the pending hints for a session. Hints are
// consumed once; a second poll returns nothing new.
func (s *HintStore) Take(_ context.Context, sessionID string) []model.PreloadTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.hints[sessionID]
	if len(list) == 0 {
		return nil
	}
	delete(s.hints, sessionID)
	return list
}
