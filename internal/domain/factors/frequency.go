package factors

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/model"
)

// Frequency base-score bands keyed on recent gifts per year.
const (
	freqBandTwoPerYear  = 2.0
	freqBandOnePerYear  = 1.0
	freqBandHalfPerYear = 0.5

	freqScoreTwoPerYear  = 0.10
	freqScoreOnePerYear  = 0.30
	freqScoreHalfPerYear = 0.50
	freqScoreRare        = 0.65
	freqScoreNone        = 0.80
)

// Frequency trend adjustments.
const (
	freqIncreasingMultiplier = 0.7
	freqDecreasingMultiplier = 1.3
	freqStoppedBonus         = 0.2
)

// A single gift gives no cadence signal; the score is fixed mid-high.
const freqSingleGiftScore = 0.6

// FrequencyResult is the frequency factor output.
type FrequencyResult struct {
	Score             float64
	Trend             Trend
	RecentCount       int     // gifts inside the recent window
	HistoricalCount   int     // gifts inside the older window
	RecentPerYear     float64 // annualized recent frequency
	HistoricalPerYear float64 // annualized historical frequency
	Description       string
}

// CalculateFrequency scores the donor's giving cadence. History is split
// into a recent window (default last 2 years) and an older window reaching
// back to the configured lookback (default 5 years, recent window excluded),
// and the annualized rates are compared to derive a trend.
func CalculateFrequency(gifts []model.GiftRecord, asOf time.Time, opts ...Option) FrequencyResult {
	if len(gifts) == 0 {
		return FrequencyResult{
			Score:       1.0,
			Trend:       TrendStable,
			Description: "no giving history on record",
		}
	}
	if len(gifts) == 1 {
		// Trend is indeterminate with a single observation.
		return FrequencyResult{
			Score:       freqSingleGiftScore,
			Trend:       TrendStable,
			RecentCount: countSince(gifts, addYears(asOf, -defaultRecentWindowYears), asOf),
			Description: "single gift on record, cadence unknown",
		}
	}

	cfg := newConfig(opts...)
	recentStart := addYears(asOf, -cfg.recentWindowYears)
	lookbackStart := addYears(asOf, -cfg.lookbackYears)

	recentCount := countSince(gifts, recentStart, asOf)
	historicalCount := countSince(gifts, lookbackStart, recentStart)

	recentRate := float64(recentCount) / cfg.recentWindowYears
	historicalYears := cfg.lookbackYears - cfg.recentWindowYears
	historicalRate := 0.0
	if historicalYears > 0 {
		historicalRate = float64(historicalCount) / historicalYears
	}

	trend := classifyTrend(recentRate, historicalRate)
	score := frequencyBaseScore(recentRate)

	switch trend {
	case TrendIncreasing:
		score *= freqIncreasingMultiplier
	case TrendDecreasing:
		score *= freqDecreasingMultiplier
	case TrendStopped:
		score += freqStoppedBonus
	case TrendStable:
		// no adjustment
	}

	return FrequencyResult{
		Score:             model.Clamp01(score),
		Trend:             trend,
		RecentCount:       recentCount,
		HistoricalCount:   historicalCount,
		RecentPerYear:     recentRate,
		HistoricalPerYear: historicalRate,
		Description:       describeFrequency(recentRate, trend),
	}
}

// frequencyBaseScore maps the recent annualized gift rate onto a base risk
// score.
func frequencyBaseScore(recentPerYear float64) float64 {
	switch {
	case recentPerYear >= freqBandTwoPerYear:
		return freqScoreTwoPerYear
	case recentPerYear >= freqBandOnePerYear:
		return freqScoreOnePerYear
	case recentPerYear >= freqBandHalfPerYear:
		return freqScoreHalfPerYear
	case recentPerYear > 0:
		return freqScoreRare
	default:
		return freqScoreNone
	}
}

// countSince counts gifts with start < date <= end.
func countSince(gifts []model.GiftRecord, start, end time.Time) int {
	n := 0
	for _, g := range gifts {
		if g.Date.After(start) && !g.Date.After(end) {
			n++
		}
	}
	return n
}

// addYears shifts t by a fractional number of years.
func addYears(t time.Time, years float64) time.Time {
	return t.Add(time.Duration(years * daysPerYear * 24 * float64(time.Hour)))
}

func describeFrequency(recentPerYear float64, trend Trend) string {
	if trend == TrendStopped {
		return "giving has stopped after an established cadence"
	}
	return fmt.Sprintf("about %.1f gifts per year recently, trend %s", recentPerYear, trend)
}
