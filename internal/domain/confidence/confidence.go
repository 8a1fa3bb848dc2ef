// Package confidence scores how much data backs a prediction. It is a
// general-purpose scorer consuming raw volume/recency/span/quality signals,
// independent of any particular engine.
package confidence

import (
	"fmt"

	"donorpulse/internal/domain/model"
)

// Sub-factor weights.
const (
	defaultQuantityWeight = 0.35
	defaultRecencyWeight  = 0.30
	defaultSpanWeight     = 0.20
	defaultQualityWeight  = 0.15
)

// Quantity bands over total records (gifts + contacts).
const (
	quantityAmple    = 50
	quantitySolid    = 25
	quantityModerate = 10
	quantityThin     = 5
	quantitySparse   = 2
)

// Recency bands over days since the most recent gift or contact.
const (
	recencyFreshDays   = 90
	recencyCurrentDays = 180
	recencyAgingDays   = 365
	recencyStaleDays   = 730
)

// Span bands in years of history covered.
const (
	spanLong   = 5.0
	spanSolid  = 3.0
	spanFair   = 2.0
	spanShort  = 1.0
)

// Quality contributions.
const (
	qualityRequiredFields = 0.6
	qualityContactInfo    = 0.4
)

// A sub-score below this emits a targeted recommendation.
const weakSubScore = 0.5

// Signals are the raw inputs to the confidence score. DaysSinceLastGift and
// DaysSinceLastContact are negative when no such record exists.
type Signals struct {
	GiftCount             int
	ContactCount          int
	DaysSinceLastGift     int
	DaysSinceLastContact  int
	DataSpanYears         float64
	RequiredFieldsPresent bool
	ContactInfoPresent    bool
}

// Weights configures the sub-factor weights.
type Weights struct {
	Quantity float64
	Recency  float64
	Span     float64
	Quality  float64
}

// DefaultWeights returns the fixed default sub-factor weights.
func DefaultWeights() Weights {
	return Weights{
		Quantity: defaultQuantityWeight,
		Recency:  defaultRecencyWeight,
		Span:     defaultSpanWeight,
		Quality:  defaultQualityWeight,
	}
}

func (w Weights) sum() float64 {
	return w.Quantity + w.Recency + w.Span + w.Quality
}

// Option applies a configuration option to the scorer.
type Option func(*config)

type config struct {
	weights Weights
}

// WithWeights overrides the sub-factor weights.
func WithWeights(w Weights) Option {
	return func(c *config) {
		if w.sum() > 0 {
			c.weights = w
		}
	}
}

// Result is the confidence score with its explanation.
type Result struct {
	Score           float64 // in [0,1]
	Level           model.ConfidenceLevel
	Factors         []model.Factor
	Recommendations []string
}

// Score combines the four sub-factors into a weighted confidence score and
// emits a targeted recommendation for each weak sub-factor.
func Score(sig Signals, opts ...Option) Result {
	cfg := config{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(&cfg)
	}

	quantity := quantityScore(sig.GiftCount + sig.ContactCount)
	recency := recencyScore(bestDays(sig.DaysSinceLastGift, sig.DaysSinceLastContact))
	span := spanScore(sig.DataSpanYears)
	quality := qualityScore(sig.RequiredFieldsPresent, sig.ContactInfoPresent)

	total := cfg.weights.sum()
	score := model.Clamp01((quantity*cfg.weights.Quantity +
		recency*cfg.weights.Recency +
		span*cfg.weights.Span +
		quality*cfg.weights.Quality) / total)

	fs := []model.Factor{
		{Name: "data_quantity", Value: fmt.Sprintf("%d gifts and %d contacts on record", sig.GiftCount, sig.ContactCount), Impact: model.ImpactFor(quantity), Weight: cfg.weights.Quantity, RawScore: quantity},
		{Name: "data_recency", Value: describeRecency(bestDays(sig.DaysSinceLastGift, sig.DaysSinceLastContact)), Impact: model.ImpactFor(recency), Weight: cfg.weights.Recency, RawScore: recency},
		{Name: "data_span", Value: fmt.Sprintf("%.1f years of history", sig.DataSpanYears), Impact: model.ImpactFor(span), Weight: cfg.weights.Span, RawScore: span},
		{Name: "data_quality", Value: describeQuality(sig.RequiredFieldsPresent, sig.ContactInfoPresent), Impact: model.ImpactFor(quality), Weight: cfg.weights.Quality, RawScore: quality},
	}
	model.SortFactors(fs)

	var recs []string
	if quantity < weakSubScore {
		recs = append(recs, "upload more historical gift and contact data to strengthen predictions")
	}
	if recency < weakSubScore {
		recs = append(recs, "record recent activity; the newest data on file is aging")
	}
	if span < weakSubScore {
		recs = append(recs, "import earlier fiscal years to extend the history span")
	}
	if quality < weakSubScore {
		recs = append(recs, "fill in missing identity or contact fields on the constituent record")
	}

	return Result{
		Score:           score,
		Level:           model.ConfidenceLevelFor(score),
		Factors:         fs,
		Recommendations: recs,
	}
}

// bestDays picks the smallest non-negative day count, or -1 when neither
// signal exists.
func bestDays(giftDays, contactDays int) int {
	switch {
	case giftDays < 0:
		return contactDays
	case contactDays < 0:
		return giftDays
	case giftDays < contactDays:
		return giftDays
	default:
		return contactDays
	}
}

func quantityScore(total int) float64 {
	switch {
	case total >= quantityAmple:
		return 1.0
	case total >= quantitySolid:
		return 0.85
	case total >= quantityModerate:
		return 0.7
	case total >= quantityThin:
		return 0.5
	case total >= quantitySparse:
		return 0.3
	case total >= 1:
		return 0.2
	default:
		return 0.0
	}
}

func recencyScore(days int) float64 {
	switch {
	case days < 0:
		return 0.0
	case days <= recencyFreshDays:
		return 1.0
	case days <= recencyCurrentDays:
		return 0.8
	case days <= recencyAgingDays:
		return 0.6
	case days <= recencyStaleDays:
		return 0.4
	default:
		return 0.2
	}
}

func spanScore(years float64) float64 {
	switch {
	case years >= spanLong:
		return 1.0
	case years >= spanSolid:
		return 0.8
	case years >= spanFair:
		return 0.6
	case years >= spanShort:
		return 0.4
	case years > 0:
		return 0.2
	default:
		return 0.1
	}
}

func qualityScore(requiredPresent, contactPresent bool) float64 {
	score := 0.0
	if requiredPresent {
		score += qualityRequiredFields
	}
	if contactPresent {
		score += qualityContactInfo
	}
	return score
}

func describeRecency(days int) string {
	if days < 0 {
		return "no activity on record"
	}
	return fmt.Sprintf("most recent activity %d days ago", days)
}

func describeQuality(requiredPresent, contactPresent bool) string {
	switch {
	case requiredPresent && contactPresent:
		return "identity and contact fields present"
	case requiredPresent:
		return "identity fields present, contact info missing"
	case contactPresent:
		return "contact info present, identity fields missing"
	default:
		return "identity and contact fields missing"
	}
}
