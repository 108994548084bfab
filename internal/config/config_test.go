package config

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := New(context.Background())

	if cfg.Addr == "" {
		t.Error("expected default addr")
	}
	if cfg.BufferCapacity != 100 {
		t.Errorf("expected default buffer capacity 100, got %d", cfg.BufferCapacity)
	}
	if cfg.SeverityHighRatio != 2.0 || cfg.SeverityMediumRatio != 1.5 {
		t.Errorf("unexpected severity defaults: %v / %v", cfg.SeverityHighRatio, cfg.SeverityMediumRatio)
	}
	if cfg.PreloadFastProbability != 0.7 || cfg.PreloadModerateProbability != 0.4 {
		t.Errorf("unexpected preload probability defaults")
	}
	if _, ok := cfg.Budgets["lcp"]; !ok {
		t.Error("expected default lcp budget")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BEACON_ADDR", ":7777")
	t.Setenv("BEACON_BUFFER_CAPACITY", "250")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Errorf("expected env addr override, got %q", cfg.Addr)
	}
	if cfg.BufferCapacity != 250 {
		t.Errorf("expected env capacity override, got %d", cfg.BufferCapacity)
	}
}

func TestLoadFileLayer(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "beacon-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("flush_interval_ms: 1234\nbudgets:\n  fcp:\n    threshold: 1800\n    unit: ms\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	t.Setenv("BEACON_CONFIG", f.Name())

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FlushIntervalMS != 1234 {
		t.Errorf("expected file flush interval, got %d", cfg.FlushIntervalMS)
	}
	if b, ok := cfg.Budgets["fcp"]; !ok || b.Threshold != 1800 {
		t.Errorf("expected fcp budget from file, got %+v", cfg.Budgets)
	}
}

func TestValidateFailsFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero capacity", func(c *Config) { c.BufferCapacity = 0 }},
		{"zero flush interval", func(c *Config) { c.FlushIntervalMS = 0 }},
		{"bad severity order", func(c *Config) { c.SeverityHighRatio = 1.2 }},
		{"bad probabilities", func(c *Config) { c.PreloadFastProbability = 0.3 }},
		{"zero budget threshold", func(c *Config) { c.Budgets["lcp"] = BudgetEntry{Threshold: 0, Unit: "ms"} }},
		{"missing budget unit", func(c *Config) { c.Budgets["lcp"] = BudgetEntry{Threshold: 2500} }},
		{"negative preload cap", func(c *Config) { c.PreloadCaps["4g"] = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New(context.Background())
			tc.mutate(cfg)
			err := cfg.validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
