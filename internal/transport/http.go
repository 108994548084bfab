// Package transport ships event batches to the telemetry backend.
//
// Delivery is strictly fire-and-forget: a batch that fails to send is
// dropped and counted, never retried. Analytics loss is preferred over
// backpressure on the collection path.
package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/beaconkit/beacon/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// envelope is the wire format for one delivered batch.
type envelope struct {
	Events []model.PerformanceEvent `json:"events"`
}

// HTTPTransport delivers batches as gzipped JSON POSTs.
type HTTPTransport struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient overrides the transport's HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// NewHTTPTransport creates a transport posting to the given endpoint.
func NewHTTPTransport(url string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		log:    logger.Get().Named("transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Deliver posts one batch. Failures of any kind are logged, counted, and
// swallowed; the batch is gone either way.
func (t *HTTPTransport) Deliver(ctx context.Context, events []model.PerformanceEvent) {
	if len(events) == 0 {
		return
	}

	start := time.Now()

	body, err := encodeBatch(events)
	if err != nil {
		t.drop(ctx, len(events), err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		t.drop(ctx, len(events), err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := t.client.Do(req)
	if err != nil {
		t.drop(ctx, len(events), err)
		return
	}
	defer resp.Body.Close() //nolint:errcheck // nothing to do with a close error here

	metrics.RecordDeliveryLatency(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		t.log.Warn(ctx, "telemetry backend rejected batch",
			logger.Int("status", resp.StatusCode),
			logger.Int("events", len(events)),
		)
		metrics.RecordDeliveryFailure()
		return
	}

	metrics.RecordEventsDelivered(len(events))
}

func (t *HTTPTransport) drop(ctx context.Context, count int, err error) {
	t.log.Warn(ctx, "batch dropped",
		logger.Int("events", count),
		logger.Error(err),
	)
	metrics.RecordDeliveryFailure()
}

func encodeBatch(events []model.PerformanceEvent) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(envelope{Events: events}); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}
