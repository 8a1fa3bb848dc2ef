package anomaly

import (
	"fmt"
	"sort"

	"donorpulse/internal/domain/model"
)

// Giving pattern change thresholds.
const (
	patternMinGifts = 3

	// (a) lapse from a consistent donor.
	consistentMinYears     = 3
	consistentMinSpanYears = 3
	consistentLapseMonths  = 18.0
	consistentHighRunYears = 3
	consistentHighLifetime = 10_000.0

	// (b) missed expected annual cycle.
	annualCycleMinMonths = 10.0
	annualCycleMaxMonths = 14.0
	annualCycleGapMonths = 15.0

	// (c) amount decline: recent half average at or below this fraction of
	// the older half average.
	amountDeclineRatio = 0.5

	// (d) frequency decline between consecutive 2-year windows.
	freqDeclineRecentMax    = 1
	freqDeclinePriorMin     = 4
	freqDeclineWindowMonths = 24
)

// DetectGivingPatternChange looks for a break in an established giving
// pattern. Requires at least three gifts; sub-checks run in order and the
// first match wins, so at most one result is returned.
func DetectGivingPatternChange(in Input) *model.AnomalyResult {
	if len(in.Gifts) < patternMinGifts {
		return nil
	}

	sorted := make([]model.GiftRecord, len(in.Gifts))
	copy(sorted, in.Gifts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	if r := consistentDonorLapse(in, sorted); r != nil {
		return r
	}
	if r := missedAnnualCycle(in, sorted); r != nil {
		return r
	}
	if r := amountDecline(in, sorted); r != nil {
		return r
	}
	return frequencyDecline(in, sorted)
}

// consistentDonorLapse flags a donor with at least three distinct giving
// years spanning three or more years who has now gone 18+ months without a
// gift.
func consistentDonorLapse(in Input, sorted []model.GiftRecord) *model.AnomalyResult {
	years := map[int]bool{}
	for _, g := range sorted {
		years[g.Date.Year()] = true
	}
	if len(years) < consistentMinYears {
		return nil
	}
	first, last := sorted[0].Date, sorted[len(sorted)-1].Date
	if last.Year()-first.Year()+1 < consistentMinSpanYears {
		return nil
	}
	gap := monthsBetween(last, in.AsOf)
	if gap < consistentLapseMonths {
		return nil
	}

	_, lifetime, _, _ := giftStats(sorted)
	severity := model.SeverityMedium
	if longestYearRun(years) >= consistentHighRunYears || lifetime >= consistentHighLifetime {
		severity = model.SeverityHigh
	}

	return &model.AnomalyResult{
		ConstituentID: in.ConstituentID,
		Type:          model.AnomalyGivingPatternChange,
		Severity:      severity,
		Title:         "Consistent donor has lapsed",
		Description:   fmt.Sprintf("gave in %d distinct years but nothing for %.0f months", len(years), gap),
		Factors: []model.AnomalyFactor{
			{Name: "giving_years", Value: fmt.Sprintf("%d", len(years))},
			{Name: "months_since_last_gift", Value: fmt.Sprintf("%.0f", gap)},
			{Name: "lifetime_total", Value: fmt.Sprintf("$%.0f", lifetime)},
		},
		DetectedAt: in.AsOf,
	}
}

// missedAnnualCycle flags a donor with a roughly annual cadence (average
// inter-gift interval 10-14 months) whose current gap is 15+ months.
func missedAnnualCycle(in Input, sorted []model.GiftRecord) *model.AnomalyResult {
	intervals := 0.0
	for i := 1; i < len(sorted); i++ {
		intervals += monthsBetween(sorted[i-1].Date, sorted[i].Date)
	}
	avgInterval := intervals / float64(len(sorted)-1)
	if avgInterval < annualCycleMinMonths || avgInterval > annualCycleMaxMonths {
		return nil
	}
	gap := monthsBetween(sorted[len(sorted)-1].Date, in.AsOf)
	if gap < annualCycleGapMonths {
		return nil
	}

	return &model.AnomalyResult{
		ConstituentID: in.ConstituentID,
		Type:          model.AnomalyGivingPatternChange,
		Severity:      model.SeverityMedium,
		Title:         "Missed expected annual gift",
		Description:   fmt.Sprintf("gives about every %.0f months but the current gap is %.0f months", avgInterval, gap),
		Factors: []model.AnomalyFactor{
			{Name: "average_interval_months", Value: fmt.Sprintf("%.1f", avgInterval)},
			{Name: "current_gap_months", Value: fmt.Sprintf("%.1f", gap)},
		},
		DetectedAt: in.AsOf,
	}
}

// amountDecline flags the recent half of gifts averaging at or below half
// of the older half's average.
func amountDecline(in Input, sorted []model.GiftRecord) *model.AnomalyResult {
	mid := len(sorted) / 2
	_, _, olderAvg, _ := giftStats(sorted[:mid])
	_, _, recentAvg, _ := giftStats(sorted[mid:])
	if olderAvg <= 0 || recentAvg > amountDeclineRatio*olderAvg {
		return nil
	}

	return &model.AnomalyResult{
		ConstituentID: in.ConstituentID,
		Type:          model.AnomalyGivingPatternChange,
		Severity:      model.SeverityMedium,
		Title:         "Gift amounts declining",
		Description:   fmt.Sprintf("recent gifts average $%.0f, down from $%.0f", recentAvg, olderAvg),
		Factors: []model.AnomalyFactor{
			{Name: "recent_average", Value: fmt.Sprintf("$%.0f", recentAvg)},
			{Name: "older_average", Value: fmt.Sprintf("$%.0f", olderAvg)},
		},
		DetectedAt: in.AsOf,
	}
}

// frequencyDecline flags at most one gift in the trailing two years against
// four or more in the two-year window before that.
func frequencyDecline(in Input, sorted []model.GiftRecord) *model.AnomalyResult {
	recentStart := in.AsOf.AddDate(0, -freqDeclineWindowMonths, 0)
	priorStart := in.AsOf.AddDate(0, -2*freqDeclineWindowMonths, 0)

	recentCount := len(giftsBetween(sorted, recentStart, in.AsOf))
	priorCount := len(giftsBetween(sorted, priorStart, recentStart))
	if recentCount > freqDeclineRecentMax || priorCount < freqDeclinePriorMin {
		return nil
	}

	return &model.AnomalyResult{
		ConstituentID: in.ConstituentID,
		Type:          model.AnomalyGivingPatternChange,
		Severity:      model.SeverityMedium,
		Title:         "Giving frequency dropping",
		Description:   fmt.Sprintf("%d gifts in the last two years vs %d in the prior two", recentCount, priorCount),
		Factors: []model.AnomalyFactor{
			{Name: "recent_gift_count", Value: fmt.Sprintf("%d", recentCount)},
			{Name: "prior_gift_count", Value: fmt.Sprintf("%d", priorCount)},
		},
		DetectedAt: in.AsOf,
	}
}

// longestYearRun returns the longest run of consecutive years in the set.
func longestYearRun(years map[int]bool) int {
	best := 0
	for y := range years {
		if years[y-1] {
			continue // not the start of a run
		}
		run := 0
		for years[y+run] {
			run++
		}
		if run > best {
			best = run
		}
	}
	return best
}
