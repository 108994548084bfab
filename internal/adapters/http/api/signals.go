package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
)

// Signal types accepted on POST /api/v1/signals.
const (
	signalNavigation = "navigation"
	signalViewport   = "viewport"
	signalHover      = "hover"
	signalFocus      = "focus"
	signalSatisfied  = "satisfied"
)

const maxSignalsPerPost = 64

// behaviorSignal is one preload trigger observation.
type behaviorSignal struct {
	Type    string `json:"type"`
	From    string `json:"from,omitempty"`
	Path    string `json:"path"`
	HoverMS int64  `json:"hover_ms,omitempty"`
}

// signalRequest is the POST /api/v1/signals payload.
type signalRequest struct {
	SessionID  string           `json:"session_id"`
	URL        string           `json:"url"`
	Connection string           `json:"connection,omitempty"`
	Signals    []behaviorSignal `json:"signals"`
}

func (s signalRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SessionID) == "":
		return errors.New("missing session_id")
	case len(s.Signals) == 0:
		return errors.New("missing signals")
	case len(s.Signals) > maxSignalsPerPost:
		return errors.New("too many signals")
	}
	for _, sig := range s.Signals {
		if sig.Path == "" {
			return errors.New("signal missing path")
		}
	}
	return nil
}

type signalResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

// handlePostSignals routes behavior signals to the preload engine and the
// navigation predictor. Unknown signal types are skipped, not rejected, so
// newer clients can post signal types this build does not know yet.
func (s *Server) handlePostSignals(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_signals"

	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	pctx := model.PageContext{
		URL:        req.URL,
		Connection: model.ParseConnectionClass(req.Connection),
		SessionID:  req.SessionID,
	}

	accepted := 0
	for _, sig := range req.Signals {
		switch sig.Type {
		case signalNavigation:
			s.deps.Navigated(ctx, pctx, sig.From, sig.Path)
		case signalViewport:
			s.deps.ViewportApproach(ctx, pctx, sig.Path)
		case signalHover:
			s.deps.PointerIntent(ctx, pctx, sig.Path, time.Duration(sig.HoverMS)*time.Millisecond)
		case signalFocus:
			s.deps.FocusIntent(ctx, pctx, sig.Path)
		case signalSatisfied:
			s.deps.CancelPreload(ctx, sig.Path)
		default:
			continue
		}
		accepted++
	}

	writeJSON(w, http.StatusAccepted, signalResponse{Status: "accepted", Accepted: accepted})
}
