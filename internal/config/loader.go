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
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if DONORPULSE_CONFIG is set
//  3. env (prefix DONORPULSE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DONORPULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DONORPULSE_LOG_LEVEL, DONORPULSE_WORKER_COUNT, ...
	// Map env keys like DONORPULSE_WORKER_COUNT -> worker_count (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DONORPULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "donorpulse_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if cfg.BatchQueueSize < 1 {
		return nil, fmt.Errorf("%w: batch_queue_size must be positive", ErrInvalidConfig)
	}
	if cfg.CVThreshold <= 0 {
		return nil, fmt.Errorf("%w: cv_threshold must be positive", ErrInvalidConfig)
	}
	if cfg.LookbackYears <= 0 || cfg.RecentWindowYears <= 0 {
		return nil, fmt.Errorf("%w: lookback windows must be positive", ErrInvalidConfig)
	}
	if cfg.RecentWindowYears >= cfg.LookbackYears {
		return nil, fmt.Errorf("%w: recent_window_years must be smaller than lookback_years", ErrInvalidConfig)
	}
	return &cfg, nil
}
