// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BatchQueueSize bounds the in-memory batch scoring queue.
	BatchQueueSize int `koanf:"batch_queue_size"`

	// WorkerCount sets the number of batch scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// LookbackYears bounds how far back giving history is considered.
	LookbackYears float64 `koanf:"lookback_years"`

	// RecentWindowYears sets the trailing window treated as recent activity.
	RecentWindowYears float64 `koanf:"recent_window_years"`

	// CVThreshold is the coefficient-of-variation threshold above which
	// portfolio metrics are reported as imbalanced.
	CVThreshold float64 `koanf:"cv_threshold"`

	// LapseWeights overrides the lapse risk factor weights. Keys: recency,
	// frequency, monetary, contact, pattern. Missing keys keep defaults.
	LapseWeights map[string]float64 `koanf:"lapse_weights"`

	// PriorityWeights overrides the priority factor weights. Keys: capacity,
	// lapse_urgency, timing, engagement. Missing keys keep defaults.
	PriorityWeights map[string]float64 `koanf:"priority_weights"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:          "info",
		BatchQueueSize:    10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		LookbackYears:     5.0,
		RecentWindowYears: 2.0,
		CVThreshold:       0.5,
		LapseWeights:      map[string]float64{},
		PriorityWeights:   map[string]float64{},
	}
	return c
}
