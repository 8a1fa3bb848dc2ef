package factors

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/model"
)

// Recency curve breakpoints in months and the score at each breakpoint.
// Between breakpoints the score is linearly interpolated; beyond the last
// breakpoint it climbs toward 1.0 over a further asymptoteMonths.
const (
	recencyBreak1 = 6.0  // score 0.20 at 6 months
	recencyBreak2 = 12.0 // score 0.40 at 12 months
	recencyBreak3 = 18.0 // score 0.60 at 18 months
	recencyBreak4 = 24.0 // score 0.80 at 24 months
	recencyBreak5 = 36.0 // score 0.95 at 36 months

	recencyScore1 = 0.20
	recencyScore2 = 0.40
	recencyScore3 = 0.60
	recencyScore4 = 0.80
	recencyScore5 = 0.95

	// Beyond 36 months the remaining 0.05 accrues over another 24 months.
	recencyAsymptoteMonths = 24.0
)

// RecencyResult is the recency factor output.
type RecencyResult struct {
	Score               float64 // lapse risk contribution, in [0,1]
	DaysSinceLastGift   int
	MonthsSinceLastGift float64
	Description         string
}

// CalculateRecency scores how long it has been since the constituent's most
// recent gift. No gifts at all is maximum risk (1.0). The score is
// monotonically non-decreasing in months since last gift.
func CalculateRecency(gifts []model.GiftRecord, asOf time.Time) RecencyResult {
	last, ok := latestGift(gifts)
	if !ok {
		return RecencyResult{
			Score:       1.0,
			Description: "no giving history on record",
		}
	}

	months := monthsBetween(last, asOf)
	return RecencyResult{
		Score:               recencyScore(months),
		DaysSinceLastGift:   daysBetween(last, asOf),
		MonthsSinceLastGift: months,
		Description:         describeRecency(months),
	}
}

// recencyScore maps months-since-last-gift through the piecewise-linear
// recency curve.
func recencyScore(months float64) float64 {
	switch {
	case months <= 0:
		return 0
	case months <= recencyBreak1:
		return lerp(0, recencyScore1, months/recencyBreak1)
	case months <= recencyBreak2:
		return lerp(recencyScore1, recencyScore2, (months-recencyBreak1)/(recencyBreak2-recencyBreak1))
	case months <= recencyBreak3:
		return lerp(recencyScore2, recencyScore3, (months-recencyBreak2)/(recencyBreak3-recencyBreak2))
	case months <= recencyBreak4:
		return lerp(recencyScore3, recencyScore4, (months-recencyBreak3)/(recencyBreak4-recencyBreak3))
	case months <= recencyBreak5:
		return lerp(recencyScore4, recencyScore5, (months-recencyBreak4)/(recencyBreak5-recencyBreak4))
	default:
		over := (months - recencyBreak5) / recencyAsymptoteMonths
		return model.Clamp01(recencyScore5 + (1-recencyScore5)*minFloat(over, 1))
	}
}

// lerp interpolates linearly between a and b by t in [0,1].
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func describeRecency(months float64) string {
	switch {
	case months < 1:
		return "gave within the last month"
	case months < recencyBreak2:
		return fmt.Sprintf("last gift %.0f months ago", months)
	case months < recencyBreak4:
		return fmt.Sprintf("last gift %.0f months ago, lapse risk building", months)
	default:
		return fmt.Sprintf("last gift %.0f months ago, effectively lapsed", months)
	}
}
