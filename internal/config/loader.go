package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if BEACON_CONFIG is set
//  3. env (prefix BEACON_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("BEACON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: BEACON_ADDR, BEACON_BUFFER_CAPACITY, ...
	// Keys keep their underscores to match the koanf struct tags.
	envProvider := env.Provider("BEACON_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "beacon_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the startup-time contract. Misconfiguration is a fatal
// initialization error, not a runtime condition.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BufferCapacity <= 0:
		return fmt.Errorf("%w: buffer_capacity must be positive", ErrInvalidConfig)
	case c.FlushIntervalMS <= 0:
		return fmt.Errorf("%w: flush_interval_ms must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.ViolationRetentionHours <= 0:
		return fmt.Errorf("%w: violation_retention_hours must be positive", ErrInvalidConfig)
	case c.BurstThreshold <= 0 || c.BurstWindowMS <= 0:
		return fmt.Errorf("%w: burst threshold and window must be positive", ErrInvalidConfig)
	case c.SeverityMediumRatio <= 1 || c.SeverityHighRatio <= c.SeverityMediumRatio:
		return fmt.Errorf("%w: severity ratios must satisfy 1 < medium < high", ErrInvalidConfig)
	case c.PreloadModerateProbability <= 0 || c.PreloadFastProbability <= c.PreloadModerateProbability || c.PreloadFastProbability > 1:
		return fmt.Errorf("%w: preload probabilities must satisfy 0 < moderate < fast <= 1", ErrInvalidConfig)
	case c.PreloadDedupeSize <= 0:
		return fmt.Errorf("%w: preload_dedupe_size must be positive", ErrInvalidConfig)
	case c.HoverIntentMS <= 0:
		return fmt.Errorf("%w: hover_intent_ms must be positive", ErrInvalidConfig)
	}

	for name, b := range c.Budgets {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: budget with empty metric name", ErrInvalidConfig)
		}
		if b.Threshold <= 0 {
			return fmt.Errorf("%w: budget %q threshold must be positive", ErrInvalidConfig, name)
		}
		if strings.TrimSpace(b.Unit) == "" {
			return fmt.Errorf("%w: budget %q missing unit", ErrInvalidConfig, name)
		}
	}

	for class, cap := range c.PreloadCaps {
		if cap < 0 {
			return fmt.Errorf("%w: preload cap for %q must not be negative", ErrInvalidConfig, class)
		}
	}
	return nil
}
