package factors

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/model"
)

// Monetary base-score bands keyed on the recent/historical annualized
// giving ratio.
const (
	monetaryRetainedRatio = 0.8 // recent giving >= 80% of historical
	monetaryReducedRatio  = 0.5

	monetaryScoreRetained  = 0.2
	monetaryScoreReduced   = 0.4
	monetaryScoreCollapsed = 0.6
	monetaryScoreNoRecent  = 0.7
	monetaryScoreNoGifts   = 0.8
)

// Monetary trend adjustments.
const (
	monetaryIncreasingMultiplier = 0.6
	monetaryDecreasingMultiplier = 1.2
	monetaryStoppedBonus         = 0.15
)

// Major donors get the benefit of the doubt: lifetime giving at or above
// this total dampens the score.
const (
	majorDonorLifetimeTotal = 100_000.0
	majorDonorMultiplier    = 0.9
)

// MonetaryResult is the monetary factor output.
type MonetaryResult struct {
	Score               float64
	Trend               Trend
	LifetimeTotal       float64
	RecentAnnualAvg     float64 // annualized giving inside the recent window
	HistoricalAnnualAvg float64 // annualized giving inside the older window
	Description         string
}

// CalculateMonetary scores the donor's giving amounts using the same
// recent/historical window split as the frequency factor.
func CalculateMonetary(gifts []model.GiftRecord, asOf time.Time, opts ...Option) MonetaryResult {
	if len(gifts) == 0 {
		return MonetaryResult{
			Score:       monetaryScoreNoGifts,
			Trend:       TrendStable,
			Description: "no giving history on record",
		}
	}

	cfg := newConfig(opts...)
	recentStart := addYears(asOf, -cfg.recentWindowYears)
	lookbackStart := addYears(asOf, -cfg.lookbackYears)

	var lifetime, recentSum, historicalSum float64
	for _, g := range gifts {
		lifetime += g.Amount
		switch {
		case g.Date.After(recentStart) && !g.Date.After(asOf):
			recentSum += g.Amount
		case g.Date.After(lookbackStart) && !g.Date.After(recentStart):
			historicalSum += g.Amount
		}
	}

	recentAnnual := recentSum / cfg.recentWindowYears
	historicalYears := cfg.lookbackYears - cfg.recentWindowYears
	historicalAnnual := 0.0
	if historicalYears > 0 {
		historicalAnnual = historicalSum / historicalYears
	}

	trend := classifyTrend(recentAnnual, historicalAnnual)
	score := monetaryBaseScore(recentAnnual, historicalAnnual)

	switch trend {
	case TrendIncreasing:
		score *= monetaryIncreasingMultiplier
	case TrendDecreasing:
		score *= monetaryDecreasingMultiplier
	case TrendStopped:
		score += monetaryStoppedBonus
	case TrendStable:
		// no adjustment
	}

	if lifetime >= majorDonorLifetimeTotal {
		score *= majorDonorMultiplier
	}

	return MonetaryResult{
		Score:               model.Clamp01(score),
		Trend:               trend,
		LifetimeTotal:       lifetime,
		RecentAnnualAvg:     recentAnnual,
		HistoricalAnnualAvg: historicalAnnual,
		Description:         describeMonetary(lifetime, trend),
	}
}

// monetaryBaseScore compares recent annualized giving against the
// historical baseline. A zero historical baseline with recent giving means
// all giving is new; that is treated as fully retained.
func monetaryBaseScore(recentAnnual, historicalAnnual float64) float64 {
	if recentAnnual <= 0 {
		return monetaryScoreNoRecent
	}
	if historicalAnnual <= 0 {
		return monetaryScoreRetained
	}
	ratio := recentAnnual / historicalAnnual
	switch {
	case ratio >= monetaryRetainedRatio:
		return monetaryScoreRetained
	case ratio >= monetaryReducedRatio:
		return monetaryScoreReduced
	default:
		return monetaryScoreCollapsed
	}
}

func describeMonetary(lifetime float64, trend Trend) string {
	if trend == TrendStopped {
		return fmt.Sprintf("giving stopped, $%.0f lifetime", lifetime)
	}
	return fmt.Sprintf("$%.0f lifetime giving, amounts %s", lifetime, trend)
}
