package api

import (
	"net/http"
	"strconv"
	"time"
)

// Report window bounds.
const (
	defaultReportWindow = time.Hour
	maxReportWindow     = 24 * time.Hour
)

// handleGetReport aggregates budget violations over a trailing window. The
// window is given as window_ms and defaults to one hour.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"

	window := defaultReportWindow
	if raw := r.URL.Query().Get("window_ms"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadWindow))
			return
		}
		window = time.Duration(ms) * time.Millisecond
		if window > maxReportWindow {
			window = maxReportWindow
		}
	}

	writeJSON(w, http.StatusOK, s.deps.Report(r.Context(), window))
}
