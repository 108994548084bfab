package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/beaconkit/beacon/internal/adapters/http/api"
	"github.com/beaconkit/beacon/internal/alert"
	app "github.com/beaconkit/beacon/internal/app"
	"github.com/beaconkit/beacon/internal/buffer"
	"github.com/beaconkit/beacon/internal/config"
	"github.com/beaconkit/beacon/internal/domain/budget"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/internal/transport"
	"github.com/beaconkit/beacon/pkg/logger"
	"github.com/beaconkit/beacon/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Collect our own system metrics instead of the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(serviceOptions(cfg, log)...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(context.Background())

	go startSystemMetricsUpdater(ctx)

	apiServer := api.NewServer(svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// serviceOptions translates loaded configuration into engine options.
func serviceOptions(cfg *config.Config, log logger.Logger) []app.Option {
	budgets := make(map[string]budget.Budget, len(cfg.Budgets))
	for name, entry := range cfg.Budgets {
		budgets[name] = budget.Budget{Threshold: entry.Threshold, Unit: entry.Unit}
	}

	caps := make(map[model.ConnectionClass]int, len(cfg.PreloadCaps))
	for class, n := range cfg.PreloadCaps {
		caps[model.ParseConnectionClass(class)] = n
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithBudgets(budgets),
		app.WithSeverityPolicy(budget.SeverityPolicy{
			HighRatio:   cfg.SeverityHighRatio,
			MediumRatio: cfg.SeverityMediumRatio,
		}),
		app.WithBurstPolicy(cfg.BurstThreshold, time.Duration(cfg.BurstWindowMS)*time.Millisecond),
		app.WithViolationRetention(time.Duration(cfg.ViolationRetentionHours) * time.Hour),
		app.WithBufferCapacity(cfg.BufferCapacity),
		app.WithFlushInterval(time.Duration(cfg.FlushIntervalMS) * time.Millisecond),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.PreloadDedupeSize),
		app.WithPreloadCaps(caps),
		app.WithProbabilityCutoffs(cfg.PreloadFastProbability, cfg.PreloadModerateProbability),
		app.WithHoverIntent(time.Duration(cfg.HoverIntentMS) * time.Millisecond),
		app.WithBuildVersion(cfg.BuildVersion),
	}

	if cfg.TelemetryURL != "" {
		var deliverer buffer.Deliverer = transport.NewHTTPTransport(cfg.TelemetryURL)
		opts = append(opts, app.WithTransport(deliverer))
	}
	if cfg.AlertWebhookURL != "" {
		sink := alert.MultiSink{
			alert.NewLogSink(logger.Named("alert")),
			alert.NewWebhookSink(cfg.AlertWebhookURL),
		}
		opts = append(opts, app.WithAlertSink(sink))
	}

	return opts
}

// startSystemMetricsUpdater refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
