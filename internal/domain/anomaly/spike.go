package anomaly

import (
	"fmt"

	"donorpulse/internal/domain/model"
)

// Engagement spike windows and trigger thresholds.
const (
	spikeRecentMonths   = 3
	spikeBaselineMonths = 12

	spikeFrequencyRatio = 1.5
	spikeAmountRatio    = 2.0
	spikeMaxGiftRatio   = 2.0

	// A quiet baseline with a burst of recent gifts also triggers.
	spikeQuietBaselineCount = 1
	spikeBurstRecentCount   = 3

	// High-severity escalation on recent gift size.
	spikeHighAvgAmount = 10_000.0
	spikeHighMaxAmount = 25_000.0
)

// DetectEngagementSpike compares the trailing 3 months of giving against a
// baseline reaching 12 months back. Returns nil when no spike is present.
func DetectEngagementSpike(in Input) *model.AnomalyResult {
	recentStart := in.AsOf.AddDate(0, -spikeRecentMonths, 0)
	baselineStart := in.AsOf.AddDate(0, -spikeBaselineMonths, 0)

	recent := giftsBetween(in.Gifts, recentStart, in.AsOf)
	baseline := giftsBetween(in.Gifts, baselineStart, recentStart)

	recentCount, _, recentAvg, recentMax := giftStats(recent)
	baselineCount, _, baselineAvg, baselineMax := giftStats(baseline)

	if recentCount == 0 {
		return nil
	}

	// Monthly rates; the baseline spans 9 months.
	recentRate := float64(recentCount) / float64(spikeRecentMonths)
	baselineRate := float64(baselineCount) / float64(spikeBaselineMonths-spikeRecentMonths)

	var fs []model.AnomalyFactor
	switch {
	case baselineRate > 0 && recentRate/baselineRate >= spikeFrequencyRatio:
		fs = append(fs, model.AnomalyFactor{
			Name:  "gift_frequency_increase",
			Value: fmt.Sprintf("%.1fx the baseline giving rate", recentRate/baselineRate),
		})
	case baselineCount <= spikeQuietBaselineCount && recentCount >= spikeBurstRecentCount:
		fs = append(fs, model.AnomalyFactor{
			Name:  "gift_frequency_increase",
			Value: fmt.Sprintf("%d gifts in %d months after a quiet baseline", recentCount, spikeRecentMonths),
		})
	}
	if baselineAvg > 0 && recentAvg/baselineAvg >= spikeAmountRatio {
		fs = append(fs, model.AnomalyFactor{
			Name:  "gift_amount_increase",
			Value: fmt.Sprintf("average gift %.1fx the baseline", recentAvg/baselineAvg),
		})
	}
	if baselineMax > 0 && recentMax >= spikeMaxGiftRatio*baselineMax {
		fs = append(fs, model.AnomalyFactor{
			Name:  "large_single_gift",
			Value: fmt.Sprintf("$%.0f vs prior max $%.0f", recentMax, baselineMax),
		})
	}

	if len(fs) == 0 {
		return nil
	}

	severity := model.SeverityMedium
	if recentAvg >= spikeHighAvgAmount || recentMax >= spikeHighMaxAmount {
		severity = model.SeverityHigh
	}

	return &model.AnomalyResult{
		ConstituentID: in.ConstituentID,
		Type:          model.AnomalyEngagementSpike,
		Severity:      severity,
		Title:         "Engagement spike",
		Description:   fmt.Sprintf("%d gifts in the last %d months, well above this donor's baseline", recentCount, spikeRecentMonths),
		Factors:       fs,
		DetectedAt:    in.AsOf,
	}
}
