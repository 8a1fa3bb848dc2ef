package anomaly

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/model"
)

// Capacity thresholds for tier estimation when no portfolio tier label is
// assigned.
const (
	tierCapacityMajor      = 100_000.0
	tierCapacityPrincipal  = 25_000.0
	tierCapacityLeadership = 10_000.0
)

// Gift-based tier inference thresholds, used when neither a tier label nor
// a capacity estimate exists.
const (
	tierGiftMajorMax          = 10_000.0
	tierGiftMajorLifetime     = 25_000.0
	tierGiftPrincipalMax      = 5_000.0
	tierGiftPrincipalLifetime = 10_000.0
	tierGiftLeaderMax         = 1_000.0
	tierGiftLeaderLifetime    = 5_000.0
)

// Expected contact cadence in months by tier.
const (
	gapThresholdMajor      = 6.0
	gapThresholdPrincipal  = 9.0
	gapThresholdLeadership = 12.0
	gapThresholdRegular    = 18.0
)

// Severity escalation rules.
const (
	gapMediumMultiple = 1.5
	gapHighMultiple   = 2.0
	gapHighLifetime   = 50_000.0
	gapHighCapacity   = 50_000.0
	gapMinGiftToFlag  = 1_000.0 // no-contact-ever needs a gift this size or a capacity estimate
)

// DetectContactGap flags donors who have gone too long without contact for
// their tier. Donors with no contact history at all are only flagged when
// a meaningful gift or a capacity estimate justifies outreach expectations.
func DetectContactGap(in Input) *model.AnomalyResult {
	_, lifetime, _, maxGift := giftStats(in.Gifts)

	var gapStart time.Time
	if last, ok := latestContact(in.Contacts); ok {
		gapStart = last
	} else {
		// Never contacted: suppress unless the donor plausibly warrants a
		// relationship.
		if maxGift < gapMinGiftToFlag && !in.CapacityKnown {
			return nil
		}
		earliest, ok := earliestGift(in.Gifts)
		if !ok {
			return nil
		}
		gapStart = earliest
	}

	tier := resolveTier(in, lifetime, maxGift)
	threshold := gapThreshold(tier)
	gap := monthsBetween(gapStart, in.AsOf)
	if gap < threshold {
		return nil
	}

	severity := model.SeverityLow
	if gap >= gapMediumMultiple*threshold || tier == model.TierMajor || tier == model.TierPrincipal {
		severity = model.SeverityMedium
	}
	if gap >= gapHighMultiple*threshold ||
		lifetime >= gapHighLifetime ||
		(in.CapacityKnown && in.EstimatedCapacity >= gapHighCapacity) {
		severity = model.SeverityHigh
	}

	return &model.AnomalyResult{
		ConstituentID: in.ConstituentID,
		Type:          model.AnomalyContactGap,
		Severity:      severity,
		Title:         "Contact gap",
		Description:   fmt.Sprintf("%.0f months without contact; %s-tier donors expect contact every %.0f months", gap, tier, threshold),
		Factors: []model.AnomalyFactor{
			{Name: "tier", Value: string(tier)},
			{Name: "gap_months", Value: fmt.Sprintf("%.1f", gap)},
			{Name: "threshold_months", Value: fmt.Sprintf("%.0f", threshold)},
			{Name: "lifetime_total", Value: fmt.Sprintf("$%.0f", lifetime)},
		},
		DetectedAt: in.AsOf,
	}
}

// resolveTier picks the donor tier: the assigned portfolio label wins, then
// the capacity estimate, then gift-amount inference.
func resolveTier(in Input, lifetime, maxGift float64) model.PortfolioTier {
	switch in.PortfolioTier {
	case model.TierMajor, model.TierPrincipal, model.TierLeadership, model.TierRegular:
		return in.PortfolioTier
	}
	if in.CapacityKnown {
		switch {
		case in.EstimatedCapacity >= tierCapacityMajor:
			return model.TierMajor
		case in.EstimatedCapacity >= tierCapacityPrincipal:
			return model.TierPrincipal
		case in.EstimatedCapacity >= tierCapacityLeadership:
			return model.TierLeadership
		default:
			return model.TierRegular
		}
	}
	switch {
	case maxGift >= tierGiftMajorMax || lifetime >= tierGiftMajorLifetime:
		return model.TierMajor
	case maxGift >= tierGiftPrincipalMax || lifetime >= tierGiftPrincipalLifetime:
		return model.TierPrincipal
	case maxGift >= tierGiftLeaderMax || lifetime >= tierGiftLeaderLifetime:
		return model.TierLeadership
	default:
		return model.TierRegular
	}
}

func gapThreshold(tier model.PortfolioTier) float64 {
	switch tier {
	case model.TierMajor:
		return gapThresholdMajor
	case model.TierPrincipal:
		return gapThresholdPrincipal
	case model.TierLeadership:
		return gapThresholdLeadership
	default:
		return gapThresholdRegular
	}
}

func latestContact(contacts []model.ContactRecord) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, c := range contacts {
		if !found || c.Date.After(latest) {
			latest = c.Date
			found = true
		}
	}
	return latest, found
}

func earliestGift(gifts []model.GiftRecord) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, g := range gifts {
		if !found || g.Date.Before(earliest) {
			earliest = g.Date
			found = true
		}
	}
	return earliest, found
}
