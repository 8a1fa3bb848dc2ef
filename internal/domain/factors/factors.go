// Package factors implements the four lapse-risk factor calculators:
// recency, frequency, monetary and contact. All calculators are pure
// functions of their inputs and an explicit reference time; they never read
// the system clock and never mutate the slices they are given.
package factors

import (
	"time"

	"donorpulse/internal/domain/model"
)

// Window configuration defaults shared by the frequency and monetary
// calculators.
const (
	defaultRecentWindowYears = 2.0
	defaultLookbackYears     = 5.0

	// daysPerMonth converts day spans into fractional months.
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// Trend describes the direction of a donor's recent behavior relative to
// their historical baseline.
type Trend string

// Trends.
const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
	TrendStopped    Trend = "stopped"
)

// Trend ratio boundaries: recent/historical >= 1.2 is increasing,
// >= 0.8 is stable, below is decreasing.
const (
	trendIncreasingRatio = 1.2
	trendStableRatio     = 0.8
)

// Config holds the window configuration for history-splitting calculators.
type Config struct {
	recentWindowYears float64
	lookbackYears     float64
}

// Option applies a configuration option to a calculator Config.
type Option func(*Config)

// WithLookbackYears sets how far back the historical window reaches.
func WithLookbackYears(years float64) Option {
	return func(c *Config) {
		if years > c.recentWindowYears {
			c.lookbackYears = years
		}
	}
}

// WithRecentWindowYears sets the size of the recent window.
func WithRecentWindowYears(years float64) Option {
	return func(c *Config) {
		if years > 0 && years < c.lookbackYears {
			c.recentWindowYears = years
		}
	}
}

// newConfig builds a Config from defaults plus options.
func newConfig(opts ...Option) Config {
	c := Config{
		recentWindowYears: defaultRecentWindowYears,
		lookbackYears:     defaultLookbackYears,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// monthsBetween returns the fractional number of months from a to b.
// Negative spans clamp to zero.
func monthsBetween(a, b time.Time) float64 {
	days := b.Sub(a).Hours() / 24
	if days < 0 {
		return 0
	}
	return days / daysPerMonth
}

// daysBetween returns whole days from a to b, clamped at zero.
func daysBetween(a, b time.Time) int {
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// classifyTrend maps a recent/historical ratio onto a trend. A zero
// historical rate has no meaningful ratio; the fallback treats any recent
// activity as increasing and none as stable.
func classifyTrend(recentRate, historicalRate float64) Trend {
	if historicalRate <= 0 {
		if recentRate > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	if recentRate <= 0 {
		return TrendStopped
	}
	ratio := recentRate / historicalRate
	switch {
	case ratio >= trendIncreasingRatio:
		return TrendIncreasing
	case ratio >= trendStableRatio:
		return TrendStable
	default:
		return TrendDecreasing
	}
}

// latestGift returns the most recent gift date, and false when there are no
// gifts.
func latestGift(gifts []model.GiftRecord) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, g := range gifts {
		if !found || g.Date.After(latest) {
			latest = g.Date
			found = true
		}
	}
	return latest, found
}
