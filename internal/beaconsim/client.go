package beaconsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// client talks to the collector API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(cfg *Config) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// checkHealth verifies the collector answers before the run starts.
func (c *client) checkHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on health probe
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

type beaconPayload struct {
	SessionID  string   `json:"session_id,omitempty"`
	URL        string   `json:"url"`
	Connection string   `json:"connection,omitempty"`
	Viewport   viewport `json:"viewport"`
	Samples    []sample `json:"samples"`
}

type beaconAck struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Accepted  int    `json:"accepted"`
}

// postBeacons submits one sample batch and returns the session id the
// collector assigned or echoed.
func (c *client) postBeacons(ctx context.Context, p beaconPayload) (beaconAck, error) {
	var ack beaconAck
	if err := c.postJSON(ctx, "/api/v1/beacons", p, &ack); err != nil {
		return beaconAck{}, err
	}
	return ack, nil
}

type signalPayload struct {
	SessionID  string       `json:"session_id"`
	URL        string       `json:"url"`
	Connection string       `json:"connection,omitempty"`
	Signals    []simSignal  `json:"signals"`
}

type simSignal struct {
	Type    string `json:"type"`
	From    string `json:"from,omitempty"`
	Path    string `json:"path"`
	HoverMS int64  `json:"hover_ms,omitempty"`
}

// postSignals submits behavior signals for a session.
func (c *client) postSignals(ctx context.Context, p signalPayload) error {
	return c.postJSON(ctx, "/api/v1/signals", p, nil)
}

type hintsReply struct {
	Hints []struct {
		Path     string `json:"path"`
		Priority string `json:"priority"`
	} `json:"hints"`
}

// getHints polls the pending preload hints for a session.
func (c *client) getHints(ctx context.Context, sessionID string) (int, error) {
	var reply hintsReply
	if err := c.getJSON(ctx, "/api/v1/preload/hints?session_id="+sessionID, &reply); err != nil {
		return 0, err
	}
	return len(reply.Hints), nil
}

// getReport fetches the violation report for the trailing window.
func (c *client) getReport(ctx context.Context, window time.Duration) (map[string]any, error) {
	var report map[string]any
	path := fmt.Sprintf("/api/v1/report?window_ms=%d", window.Milliseconds())
	if err := c.getJSON(ctx, path, &report); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close is best effort
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post %s returned %d", path, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close is best effort
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s returned %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
