package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beaconkit/beacon/internal/adapters/http/api"
	"github.com/beaconkit/beacon/internal/adapters/source"
	"github.com/beaconkit/beacon/internal/domain/budget"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// mockEngine records every call the handlers make.
type mockEngine struct {
	ingested   []source.Sample
	ingestCtx  model.PageContext
	navs       [][2]string
	viewports  []string
	pointers   []string
	hovers     []time.Duration
	focuses    []string
	cancels    []string
	hints      []model.PreloadTask
	reportArgs []time.Duration
}

func (m *mockEngine) Ingest(_ context.Context, pctx model.PageContext, samples []source.Sample) {
	m.ingestCtx = pctx
	m.ingested = append(m.ingested, samples...)
}

func (m *mockEngine) Navigated(_ context.Context, _ model.PageContext, from, to string) {
	m.navs = append(m.navs, [2]string{from, to})
}

func (m *mockEngine) ViewportApproach(_ context.Context, _ model.PageContext, path string) {
	m.viewports = append(m.viewports, path)
}

func (m *mockEngine) PointerIntent(_ context.Context, _ model.PageContext, path string, hover time.Duration) {
	m.pointers = append(m.pointers, path)
	m.hovers = append(m.hovers, hover)
}

func (m *mockEngine) FocusIntent(_ context.Context, _ model.PageContext, path string) {
	m.focuses = append(m.focuses, path)
}

func (m *mockEngine) CancelPreload(_ context.Context, path string) {
	m.cancels = append(m.cancels, path)
}

func (m *mockEngine) Hints(_ context.Context, _ string) []model.PreloadTask {
	return m.hints
}

func (m *mockEngine) Report(_ context.Context, window time.Duration) budget.Report {
	m.reportArgs = append(m.reportArgs, window)
	return budget.Report{WindowMS: window.Milliseconds(), BudgetHealth: 100}
}

func (m *mockEngine) GetStats() map[string]any {
	return map[string]any{"sessions": 1}
}

func serve(e *mockEngine, method, path, body string) *httptest.ResponseRecorder {
	srv := api.NewServer(e)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestPostBeacons(t *testing.T) {
	Convey("Given the beacons endpoint", t, func() {
		e := &mockEngine{}

		Convey("When a valid batch arrives without a session id", func() {
			body := `{
				"url": "https://shop.example/cart",
				"connection": "4g",
				"viewport": {"width": 390, "height": 840, "pixel_ratio": 3},
				"samples": [
					{"kind": "vitals", "name": "lcp", "value": 2800},
					{"kind": "long_task", "value": 120}
				]
			}`
			rec := serve(e, http.MethodPost, "/api/v1/beacons", body)

			Convey("Then the batch is accepted and a session is assigned", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)

				var resp struct {
					Status    string `json:"status"`
					SessionID string `json:"session_id"`
					Accepted  int    `json:"accepted"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Status, ShouldEqual, "accepted")
				So(resp.SessionID, ShouldNotBeEmpty)
				So(resp.Accepted, ShouldEqual, 2)
			})

			Convey("Then the page context is derived from the payload", func() {
				So(e.ingestCtx.Connection, ShouldEqual, model.Connection4G)
				So(e.ingestCtx.Device, ShouldEqual, model.DeviceMobile)
				So(e.ingestCtx.SessionID, ShouldNotBeEmpty)
				So(len(e.ingested), ShouldEqual, 2)
			})
		})

		Convey("When the client echoes its session id", func() {
			body := `{"session_id": "sess-7", "url": "https://shop.example", "samples": [{"kind": "vitals", "name": "cls", "value": 0.3}]}`
			rec := serve(e, http.MethodPost, "/api/v1/beacons", body)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(e.ingestCtx.SessionID, ShouldEqual, "sess-7")
		})

		Convey("When the payload is not JSON", func() {
			rec := serve(e, http.MethodPost, "/api/v1/beacons", "{not json")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the url is missing", func() {
			rec := serve(e, http.MethodPost, "/api/v1/beacons", `{"samples": [{"kind": "vitals", "name": "lcp", "value": 1}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(e.ingested, ShouldBeEmpty)
		})

		Convey("When the batch is empty", func() {
			rec := serve(e, http.MethodPost, "/api/v1/beacons", `{"url": "https://shop.example", "samples": []}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPostSignals(t *testing.T) {
	Convey("Given the signals endpoint", t, func() {
		e := &mockEngine{}

		Convey("When mixed signals arrive", func() {
			body := `{
				"session_id": "sess-1",
				"url": "https://shop.example/home",
				"connection": "4g",
				"signals": [
					{"type": "navigation", "from": "/home", "path": "/products"},
					{"type": "viewport", "path": "/assets/hero.jpg"},
					{"type": "hover", "path": "/cart", "hover_ms": 90},
					{"type": "focus", "path": "/checkout"},
					{"type": "satisfied", "path": "/assets/hero.jpg"},
					{"type": "future-thing", "path": "/x"}
				]
			}`
			rec := serve(e, http.MethodPost, "/api/v1/signals", body)

			Convey("Then known signals are routed and unknown ones skipped", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(e.navs, ShouldResemble, [][2]string{{"/home", "/products"}})
				So(e.viewports, ShouldResemble, []string{"/assets/hero.jpg"})
				So(e.pointers, ShouldResemble, []string{"/cart"})
				So(e.hovers, ShouldResemble, []time.Duration{90 * time.Millisecond})
				So(e.focuses, ShouldResemble, []string{"/checkout"})
				So(e.cancels, ShouldResemble, []string{"/assets/hero.jpg"})

				var resp struct {
					Accepted int `json:"accepted"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Accepted, ShouldEqual, 5)
			})
		})

		Convey("When the session id is missing", func() {
			rec := serve(e, http.MethodPost, "/api/v1/signals", `{"signals": [{"type": "focus", "path": "/x"}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a signal has no path", func() {
			rec := serve(e, http.MethodPost, "/api/v1/signals", `{"session_id": "s", "signals": [{"type": "focus"}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetHints(t *testing.T) {
	Convey("Given the hints endpoint", t, func() {
		e := &mockEngine{
			hints: []model.PreloadTask{
				{Path: "/products", Priority: model.PriorityHigh, Trigger: model.TriggerPrediction},
			},
		}

		Convey("When a session polls its hints", func() {
			rec := serve(e, http.MethodGet, "/api/v1/preload/hints?session_id=sess-1", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				SessionID string `json:"session_id"`
				Hints     []struct {
					Path     string `json:"path"`
					Priority string `json:"priority"`
					Trigger  string `json:"trigger"`
				} `json:"hints"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.SessionID, ShouldEqual, "sess-1")
			So(len(resp.Hints), ShouldEqual, 1)
			So(resp.Hints[0].Priority, ShouldEqual, "high")
			So(resp.Hints[0].Trigger, ShouldEqual, "prediction")
		})

		Convey("When the session id is missing", func() {
			rec := serve(e, http.MethodGet, "/api/v1/preload/hints", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetReport(t *testing.T) {
	Convey("Given the report endpoint", t, func() {
		e := &mockEngine{}

		Convey("When no window is given, it defaults to one hour", func() {
			rec := serve(e, http.MethodGet, "/api/v1/report", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(e.reportArgs, ShouldResemble, []time.Duration{time.Hour})
		})

		Convey("When a window is given in milliseconds", func() {
			rec := serve(e, http.MethodGet, "/api/v1/report?window_ms=60000", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(e.reportArgs, ShouldResemble, []time.Duration{time.Minute})
		})

		Convey("When the window exceeds retention, it is clamped", func() {
			serve(e, http.MethodGet, "/api/v1/report?window_ms=999999999999", "")
			So(e.reportArgs, ShouldResemble, []time.Duration{24 * time.Hour})
		})

		Convey("When the window is malformed", func() {
			rec := serve(e, http.MethodGet, "/api/v1/report?window_ms=soon", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		e := &mockEngine{}

		Convey("Then stats returns engine counters", func() {
			rec := serve(e, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "sessions")
		})

		Convey("Then healthz reports ok", func() {
			rec := serve(e, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("Then metrics serves the Prometheus registry", func() {
			rec := serve(e, http.MethodGet, "/metrics", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
