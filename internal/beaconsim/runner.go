package beaconsim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beaconkit/beacon/pkg/logger"
)

const (
	settleDelay  = 2 * time.Second
	reportWindow = time.Hour
)

// Run executes the full simulation: health check, concurrent sessions,
// then a report fetch to confirm the pipeline saw the traffic.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("beaconsim")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting collector simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
	)

	c := newClient(cfg)
	if err := c.checkHealth(ctx); err != nil {
		return fmt.Errorf("collector not reachable: %w", err)
	}

	var samplesPosted, signalsPosted, hintsReceived, failures atomic.Int64

	jobs := make(chan session)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				posted, signals, hints, err := runSession(ctx, c, cfg, s)
				samplesPosted.Add(int64(posted))
				signalsPosted.Add(int64(signals))
				hintsReceived.Add(int64(hints))
				if err != nil {
					failures.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "session failed", logger.Error(err))
					}
				}
			}
		}()
	}

	for i := 0; i < cfg.Sessions; i++ {
		select {
		case jobs <- newSession(cfg):
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	log.Info(ctx, "waiting for pipeline to settle")
	time.Sleep(settleDelay)

	report, err := c.getReport(ctx, reportWindow)
	if err != nil {
		return fmt.Errorf("report fetch failed: %w", err)
	}

	stats.SessionsRun = cfg.Sessions
	stats.SamplesPosted = int(samplesPosted.Load())
	stats.SignalsPosted = int(signalsPosted.Load())
	stats.HintsReceived = int(hintsReceived.Load())
	stats.RequestFailures = int(failures.Load())
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "simulation complete",
		logger.Int("sessions", stats.SessionsRun),
		logger.Int("samples", stats.SamplesPosted),
		logger.Int("signals", stats.SignalsPosted),
		logger.Int("hints", stats.HintsReceived),
		logger.Int("failures", stats.RequestFailures),
		logger.Duration("duration", stats.Duration),
		logger.Any("budget_health", report["budget_health"]),
		logger.Any("total_violations", report["total_violations"]),
	)
	return nil
}

// runSession walks one visitor through their journey: beacons per page,
// behavior signals between pages, a hint poll at the end.
func runSession(ctx context.Context, c *client, cfg *Config, s session) (samples, signals, hints int, err error) {
	sessionID := ""

	for i, path := range s.Journey {
		batch := makeSamples(s, cfg.SamplesPerSession)
		ack, postErr := c.postBeacons(ctx, beaconPayload{
			SessionID:  sessionID,
			URL:        "https://shop.example" + path,
			Connection: s.Connection,
			Viewport:   s.Viewport,
			Samples:    batch,
		})
		if postErr != nil {
			return samples, signals, hints, postErr
		}
		sessionID = ack.SessionID
		samples += ack.Accepted

		if i == 0 {
			continue
		}

		sigs := []simSignal{
			{Type: "navigation", From: s.Journey[i-1], Path: path},
		}
		if rand.Float64() < 0.5 {
			sigs = append(sigs, simSignal{Type: "hover", Path: nextPath(s.Journey, i), HoverMS: 90})
		}
		if postErr := c.postSignals(ctx, signalPayload{
			SessionID:  sessionID,
			URL:        "https://shop.example" + path,
			Connection: s.Connection,
			Signals:    sigs,
		}); postErr != nil {
			return samples, signals, hints, postErr
		}
		signals += len(sigs)
	}

	n, hintErr := c.getHints(ctx, sessionID)
	if hintErr != nil {
		return samples, signals, hints, hintErr
	}
	hints += n
	return samples, signals, hints, nil
}

func nextPath(journey []string, i int) string {
	if i+1 < len(journey) {
		return journey[i+1]
	}
	return journey[0]
}
