package alert_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beaconkit/beacon/internal/alert"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSinkDelivers(t *testing.T) {
	var got alert.Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := alert.NewWebhookSink(srv.URL)
	a := alert.Alert{
		Type:      alert.TypeBudgetViolation,
		Metric:    model.MetricLCP,
		Value:     6000,
		Threshold: 2500,
		Severity:  model.SeverityHigh,
		Timestamp: time.Now(),
	}

	require.NoError(t, sink.Send(context.Background(), a))
	assert.Equal(t, model.MetricLCP, got.Metric)
	assert.Equal(t, model.SeverityHigh, got.Severity)
}

func TestWebhookSinkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := alert.NewWebhookSink(srv.URL)
	err := sink.Send(context.Background(), alert.Alert{Type: alert.TypeBudgetViolation})
	assert.ErrorIs(t, err, alert.ErrAlertDelivery)
}

func TestMultiSinkFansOut(t *testing.T) {
	require.NoError(t, logger.Init())

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := alert.MultiSink{
		alert.NewLogSink(logger.Get()),
		alert.NewWebhookSink(srv.URL),
	}
	require.NoError(t, sink.Send(context.Background(), alert.Alert{Type: alert.TypeSessionEscalation}))
	assert.Equal(t, 1, calls)
}
