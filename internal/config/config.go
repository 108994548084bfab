// Package config defines collector configuration and loading.
//
// Conventions:
// - Defaults come from New; file and env layers override them.
// - Malformed configuration fails fast at load time. Nothing here is
//   mutable after initialization.
package config

import "context"

// BudgetEntry configures the threshold for one metric.
type BudgetEntry struct {
	Threshold float64 `koanf:"threshold"`
	Unit      string  `koanf:"unit"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the collector HTTP listen address, e.g. ":9180".
	Addr string `koanf:"addr"`

	// BuildVersion stamps enriched metrics when the page reports none.
	BuildVersion string `koanf:"build_version"`

	// TelemetryURL receives flushed event batches. Empty disables delivery.
	TelemetryURL string `koanf:"telemetry_url"`

	// AlertWebhookURL receives budget violation alerts. Empty means alerts
	// are logged only.
	AlertWebhookURL string `koanf:"alert_webhook_url"`

	// BufferCapacity bounds the telemetry event buffer (event count).
	BufferCapacity int `koanf:"buffer_capacity"`

	// FlushIntervalMS is the repeating flush timer period.
	FlushIntervalMS int `koanf:"flush_interval_ms"`

	// QueueSize bounds the pipeline queue between ingest and fan-out.
	QueueSize int `koanf:"queue_size"`

	// Budgets maps metric names to enforcement thresholds.
	Budgets map[string]BudgetEntry `koanf:"budgets"`

	// ViolationRetentionHours bounds the rolling violation log.
	ViolationRetentionHours int `koanf:"violation_retention_hours"`

	// BurstThreshold and BurstWindowMS control session escalation: more
	// than BurstThreshold violations inside the window escalates.
	BurstThreshold int `koanf:"burst_threshold"`
	BurstWindowMS  int `koanf:"burst_window_ms"`

	// Severity ratio cutoffs: ratio > High is high, > Medium is medium,
	// anything above 1 is low.
	SeverityHighRatio   float64 `koanf:"severity_high_ratio"`
	SeverityMediumRatio float64 `koanf:"severity_medium_ratio"`

	// Preload probability cutoffs for predicted-navigation triggers.
	PreloadFastProbability     float64 `koanf:"preload_fast_probability"`
	PreloadModerateProbability float64 `koanf:"preload_moderate_probability"`

	// PreloadCaps limits dispatches per pass by connection class.
	PreloadCaps map[string]int `koanf:"preload_caps"`

	// PreloadDedupeSize bounds the preloaded-path dedup set.
	PreloadDedupeSize int `koanf:"preload_dedupe_size"`

	// HoverIntentMS is the sustained-hover duration treated as intent.
	HoverIntentMS int `koanf:"hover_intent_ms"`
}

// New returns the default configuration. Context is accepted first per the
// project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9180",
		BuildVersion:    "dev",
		BufferCapacity:  100,
		FlushIntervalMS: 5_000,
		QueueSize:       10_000,
		Budgets: map[string]BudgetEntry{
			"lcp":  {Threshold: 2500, Unit: "ms"},
			"inp":  {Threshold: 200, Unit: "ms"},
			"cls":  {Threshold: 0.1, Unit: "score"},
			"ttfb": {Threshold: 800, Unit: "ms"},
		},
		ViolationRetentionHours:    24,
		BurstThreshold:             10,
		BurstWindowMS:              60_000,
		SeverityHighRatio:          2.0,
		SeverityMediumRatio:        1.5,
		PreloadFastProbability:     0.7,
		PreloadModerateProbability: 0.4,
		PreloadCaps: map[string]int{
			"4g":      3,
			"3g":      1,
			"2g":      0,
			"slow-2g": 0,
			"unknown": 1,
		},
		PreloadDedupeSize: 4_096,
		HoverIntentMS:     65,
	}
}
