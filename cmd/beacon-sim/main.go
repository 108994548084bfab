package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/beaconkit/beacon/internal/beaconsim"
	"github.com/beaconkit/beacon/pkg/logger"
)

// Default configuration constants.
const (
	defaultSessions   = 200
	defaultSamples    = 8
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
	defaultSlowShare  = 0.2
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9180", "Base URL of the collector")
		sessions  = flag.Int("sessions", defaultSessions, "Number of synthetic sessions")
		samples   = flag.Int("samples", defaultSamples, "Performance samples per page view")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		slowShare = flag.Float64("slow", defaultSlowShare, "Share of sessions with degraded vitals")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &beaconsim.Config{
		BaseURL:           *baseURL,
		Sessions:          *sessions,
		SamplesPerSession: *samples,
		Workers:           *workers,
		Timeout:           *timeout,
		SlowShare:         *slowShare,
		Verbose:           *verbose,
	}

	if err := beaconsim.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
