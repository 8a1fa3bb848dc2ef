package factors

import (
	"fmt"
	"sort"
	"time"

	"donorpulse/internal/domain/model"
)

// Contact factor defaults.
const (
	contactScoreNoContacts = 0.75

	// Recency curve breakpoints in months.
	contactBreak1 = 3.0
	contactBreak2 = 6.0
	contactBreak3 = 12.0
	contactBreak4 = 18.0

	contactScore1 = 0.2
	contactScore2 = 0.4
	contactScore3 = 0.6
	contactScore4 = 0.8

	contactTailMonths = 12.0 // months over which the final 0.2 accrues

	// The weighted contact score is normalized against this many weighted
	// contacts over the trailing 12 months.
	contactTargetWeighted = 3.0
	contactWindowMonths   = 12
)

// Frequency-adjustment multipliers on the recency score.
const (
	contactFreqStrong    = 0.8 // frequency score >= 0.8
	contactFreqGood      = 0.9 // >= 0.5
	contactFreqNeutral   = 1.0 // >= 0.25
	contactFreqPenalty   = 1.1 // below 0.25
	contactFreqStrongAt  = 0.8
	contactFreqGoodAt    = 0.5
	contactFreqNeutralAt = 0.25
)

// Outcome deltas applied per contact, clamped after every application.
const (
	outcomePositiveDelta   = -0.15
	outcomeNegativeDelta   = 0.10
	outcomeNoResponseDelta = 0.05
)

// defaultContactTypeWeights is the contact-type weight table. Personal
// touch points count more than broadcast ones.
func defaultContactTypeWeights() map[model.ContactType]float64 {
	return map[model.ContactType]float64{
		model.ContactMeeting: 1.0,
		model.ContactVisit:   1.0,
		model.ContactCall:    0.8,
		model.ContactVideo:   0.8,
		model.ContactEvent:   0.7,
		model.ContactLetter:  0.6,
		model.ContactEmail:   0.5,
		model.ContactOther:   0.4,
	}
}

// ContactOption configures the contact factor calculator.
type ContactOption func(*contactConfig)

type contactConfig struct {
	typeWeights    map[model.ContactType]float64
	targetWeighted float64
}

// WithContactTypeWeights overrides the contact-type weight table. Entries
// with non-positive weights are ignored.
func WithContactTypeWeights(weights map[model.ContactType]float64) ContactOption {
	return func(c *contactConfig) {
		for t, w := range weights {
			if w > 0 {
				c.typeWeights[t] = w
			}
		}
	}
}

// WithContactTarget overrides the weighted-contact normalization target.
func WithContactTarget(target float64) ContactOption {
	return func(c *contactConfig) {
		if target > 0 {
			c.targetWeighted = target
		}
	}
}

// ContactResult is the contact factor output.
type ContactResult struct {
	Score                  float64
	DaysSinceLastContact   int
	MonthsSinceLastContact float64
	WeightedRecentContacts float64 // weighted contacts over the trailing 12 months
	HasPositiveOutcome     bool    // a positive outcome in the trailing 12 months
	Description            string
}

// CalculateContact scores contact-engagement risk: recency of the last
// touch, adjusted by weighted contact frequency over the trailing year, then
// nudged by each recorded outcome in chronological order.
func CalculateContact(contacts []model.ContactRecord, asOf time.Time, opts ...ContactOption) ContactResult {
	if len(contacts) == 0 {
		return ContactResult{
			Score:       contactScoreNoContacts,
			Description: "no contact history on record",
		}
	}

	cfg := contactConfig{
		typeWeights:    defaultContactTypeWeights(),
		targetWeighted: contactTargetWeighted,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	last := contacts[0].Date
	for _, c := range contacts[1:] {
		if c.Date.After(last) {
			last = c.Date
		}
	}
	months := monthsBetween(last, asOf)
	score := contactRecencyScore(months)

	windowStart := asOf.AddDate(0, -contactWindowMonths, 0)
	weighted := 0.0
	hasPositive := false
	for _, c := range contacts {
		if !c.Date.After(windowStart) || c.Date.After(asOf) {
			continue
		}
		w, ok := cfg.typeWeights[c.Type]
		if !ok {
			w = cfg.typeWeights[model.ContactOther]
		}
		weighted += w
		if c.Outcome == model.OutcomePositive {
			hasPositive = true
		}
	}

	freqScore := model.Clamp01(weighted / cfg.targetWeighted)
	score *= contactFrequencyMultiplier(freqScore)
	score = model.Clamp01(score)

	// Apply outcome deltas oldest-first so the result is deterministic.
	ordered := make([]model.ContactRecord, len(contacts))
	copy(ordered, contacts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })
	for _, c := range ordered {
		switch c.Outcome {
		case model.OutcomePositive:
			score = model.Clamp01(score + outcomePositiveDelta)
		case model.OutcomeNegative:
			score = model.Clamp01(score + outcomeNegativeDelta)
		case model.OutcomeNoResponse:
			score = model.Clamp01(score + outcomeNoResponseDelta)
		case model.OutcomeNeutral:
			// no delta
		}
	}

	return ContactResult{
		Score:                  score,
		DaysSinceLastContact:   daysBetween(last, asOf),
		MonthsSinceLastContact: months,
		WeightedRecentContacts: weighted,
		HasPositiveOutcome:     hasPositive,
		Description:            describeContact(months, weighted),
	}
}

// contactRecencyScore maps months-since-last-contact through the five-band
// piecewise-linear curve.
func contactRecencyScore(months float64) float64 {
	switch {
	case months <= 0:
		return 0
	case months <= contactBreak1:
		return lerp(0, contactScore1, months/contactBreak1)
	case months <= contactBreak2:
		return lerp(contactScore1, contactScore2, (months-contactBreak1)/(contactBreak2-contactBreak1))
	case months <= contactBreak3:
		return lerp(contactScore2, contactScore3, (months-contactBreak2)/(contactBreak3-contactBreak2))
	case months <= contactBreak4:
		return lerp(contactScore3, contactScore4, (months-contactBreak3)/(contactBreak4-contactBreak3))
	default:
		over := (months - contactBreak4) / contactTailMonths
		return model.Clamp01(contactScore4 + (1-contactScore4)*minFloat(over, 1))
	}
}

// contactFrequencyMultiplier adjusts the recency score by how much weighted
// contact the donor received relative to target.
func contactFrequencyMultiplier(freqScore float64) float64 {
	switch {
	case freqScore >= contactFreqStrongAt:
		return contactFreqStrong
	case freqScore >= contactFreqGoodAt:
		return contactFreqGood
	case freqScore >= contactFreqNeutralAt:
		return contactFreqNeutral
	default:
		return contactFreqPenalty
	}
}

func describeContact(months, weighted float64) string {
	return fmt.Sprintf("last contact %.0f months ago, %.1f weighted touches in the last year", months, weighted)
}
