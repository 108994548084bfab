package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/beaconkit/beacon/internal/adapters/source"
	"github.com/beaconkit/beacon/internal/domain/model"
)

// maxSamplesPerBeacon bounds one POST so a single page cannot flood the
// pipeline.
const maxSamplesPerBeacon = 256

// beaconRequest is the POST /api/v1/beacons payload.
type beaconRequest struct {
	SessionID    string          `json:"session_id,omitempty"`
	UserID       string          `json:"user_id,omitempty"`
	URL          string          `json:"url"`
	Connection   string          `json:"connection,omitempty"`
	Viewport     model.Viewport  `json:"viewport"`
	BuildVersion string          `json:"build_version,omitempty"`
	Samples      []source.Sample `json:"samples"`
}

func (b beaconRequest) validate() error {
	switch {
	case strings.TrimSpace(b.URL) == "":
		return errors.New("missing url")
	case len(b.Samples) == 0:
		return errors.New("missing samples")
	case len(b.Samples) > maxSamplesPerBeacon:
		return errors.New("too many samples")
	}
	return nil
}

type beaconResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Accepted  int    `json:"accepted"`
}

// handlePostBeacons accepts a page's sample batch. First-contact requests
// without a session id are assigned one; the client echoes it on subsequent
// posts so metrics correlate per session.
func (s *Server) handlePostBeacons(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_beacons"

	var req beaconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	pctx := model.PageContext{
		URL:          req.URL,
		Connection:   model.ParseConnectionClass(req.Connection),
		Viewport:     req.Viewport,
		Device:       model.DeviceClassFor(req.Viewport.Width),
		SessionID:    req.SessionID,
		UserID:       req.UserID,
		BuildVersion: req.BuildVersion,
	}

	s.deps.Ingest(r.Context(), pctx, req.Samples)

	writeJSON(w, http.StatusAccepted, beaconResponse{
		Status:    "accepted",
		SessionID: req.SessionID,
		Accepted:  len(req.Samples),
	})
}
