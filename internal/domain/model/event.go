package model

import "time"

// PerformanceEvent is the named envelope appended to the telemetry buffer.
// The buffer owns the queue of these until a flush hands them to the
// delivery transport.
type PerformanceEvent struct {
	Type      string            `json:"type"`
	Data      map[string]any    `json:"data"`
	Timestamp time.Time         `json:"-"`
	EpochMS   int64             `json:"timestamp"`
	URL       string            `json:"url"`
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// EventFromMetric converts an enriched metric into its transport envelope.
func EventFromMetric(em EnrichedMetric) PerformanceEvent {
	return PerformanceEvent{
		Type: "metric",
		Data: map[string]any{
			"name":   string(em.Name),
			"value":  em.Value,
			"unit":   em.Unit,
			"rating": string(em.Rating),
		},
		Timestamp: em.Timestamp,
		EpochMS:   em.Timestamp.UnixMilli(),
		URL:       em.Context.URL,
		SessionID: em.Context.SessionID,
		UserID:    em.Context.UserID,
		Attrs:     em.Attrs,
	}
}
