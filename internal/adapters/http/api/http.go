// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beaconkit/beacon/internal/adapters/source"
	"github.com/beaconkit/beacon/internal/domain/budget"
	"github.com/beaconkit/beacon/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	// Ingest dispatches a page's raw samples into the collection pipeline.
	Ingest(ctx context.Context, pctx model.PageContext, samples []source.Sample)

	// Navigated feeds one route transition to the navigation predictor and
	// the preload engine.
	Navigated(ctx context.Context, pctx model.PageContext, from, to string)

	// ViewportApproach, PointerIntent and FocusIntent feed preload trigger
	// signals.
	ViewportApproach(ctx context.Context, pctx model.PageContext, path string)
	PointerIntent(ctx context.Context, pctx model.PageContext, path string, hover time.Duration)
	FocusIntent(ctx context.Context, pctx model.PageContext, path string)

	// CancelPreload withdraws a queued preload whose target is already
	// satisfied.
	CancelPreload(ctx context.Context, path string)

	// Hints returns and consumes the pending preload hints for a session.
	Hints(ctx context.Context, sessionID string) []model.PreloadTask

	// Report aggregates budget violations over the trailing window.
	Report(ctx context.Context, window time.Duration) budget.Report

	// GetStats exposes engine counters for the stats endpoint.
	GetStats() map[string]any
}

// Server wires HTTP routes for the collector API.
type Server struct {
	deps Dependencies
}

// NewServer creates an API server over the engine.
func NewServer(deps Dependencies) *Server {
	return &Server{deps: deps}
}

// Routes builds the collector's router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(metricsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/beacons", s.handlePostBeacons)
		r.Post("/signals", s.handlePostSignals)
		r.Get("/preload/hints", s.handleGetHints)
		r.Get("/report", s.handleGetReport)
	})
	r.Get("/stats", s.handleStats)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
