package api

import (
	"net/http"
	"time"
)

// hintEntry is the client-facing shape of one preload hint.
type hintEntry struct {
	Path     string `json:"path"`
	Priority string `json:"priority"`
	Trigger  string `json:"trigger"`
}

type hintsResponse struct {
	SessionID   string      `json:"session_id"`
	Hints       []hintEntry `json:"hints"`
	GeneratedAt int64       `json:"generated_at"`
}

// handleGetHints returns and consumes the pending preload hints for a
// session. The page applies them as passive resource hints.
func (s *Server) handleGetHints(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_hints"

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrMissingSession))
		return
	}

	tasks := s.deps.Hints(r.Context(), sessionID)
	hints := make([]hintEntry, 0, len(tasks))
	for _, task := range tasks {
		hints = append(hints, hintEntry{
			Path:     task.Path,
			Priority: task.Priority.String(),
			Trigger:  string(task.Trigger),
		})
	}

	writeJSON(w, http.StatusOK, hintsResponse{
		SessionID:   sessionID,
		Hints:       hints,
		GeneratedAt: time.Now().UnixMilli(),
	})
}
