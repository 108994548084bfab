// Package beaconsim generates synthetic browsing sessions against a
// running collector. Used for load exercises and end-to-end smoke checks.
package beaconsim

import "time"

// Config holds configuration for the simulation run.
type Config struct {
	BaseURL           string        // Base URL of the collector
	Sessions          int           // Number of synthetic sessions
	SamplesPerSession int           // Performance samples per session
	Workers           int           // Concurrent session workers
	Timeout           time.Duration // HTTP request timeout
	SlowShare         float64       // Share of sessions with degraded vitals
	Verbose           bool          // Enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	SessionsRun     int
	SamplesPosted   int
	SignalsPosted   int
	HintsReceived   int
	RequestFailures int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
