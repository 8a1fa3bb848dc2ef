// Package lapserisk composes the four factor calculators and the pattern
// scorer into an explainable lapse risk score.
package lapserisk

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/factors"
	"donorpulse/internal/domain/model"
)

// Default composite weights. The pattern weight is reserved for a future
// learned signal and currently feeds a neutral constant.
const (
	defaultRecencyWeight   = 0.30
	defaultFrequencyWeight = 0.25
	defaultMonetaryWeight  = 0.20
	defaultContactWeight   = 0.15
	defaultPatternWeight   = 0.10
)

// Predicted lapse window thresholds on the composite score.
const (
	windowImmediateAt = 0.85
	windowNearAt      = 0.70
	windowMidAt       = 0.50
	windowFarAt       = 0.40
)

// Predicted lapse window labels.
const (
	WindowImmediate = "1-3 months"
	WindowNear      = "3-6 months"
	WindowMid       = "6-12 months"
	WindowFar       = "12-18 months"
	WindowDistant   = "18+ months"
)

// Confidence increments. Each signal contributes a bounded amount; the sum
// caps at 1.0.
const (
	confidencePerGift      = 0.04
	confidenceGiftCap      = 0.40
	confidencePerContact   = 0.02
	confidenceContactCap   = 0.20
	confidenceRecentGift   = 0.20 // last gift within 12 months
	confidenceAgingGift    = 0.10 // last gift within 24 months
	confidencePerSpanYear  = 0.05
	confidenceSpanCap      = 0.20
	recentGiftMonths       = 12.0
	agingGiftMonths        = 24.0
)

// Weights configures the composite. All weights must be in [0,1]; callers
// own that precondition.
type Weights struct {
	Recency   float64
	Frequency float64
	Monetary  float64
	Contact   float64
	Pattern   float64
}

// DefaultWeights returns the fixed default composite weights.
func DefaultWeights() Weights {
	return Weights{
		Recency:   defaultRecencyWeight,
		Frequency: defaultFrequencyWeight,
		Monetary:  defaultMonetaryWeight,
		Contact:   defaultContactWeight,
		Pattern:   defaultPatternWeight,
	}
}

// sum returns the total weight used as the composite denominator.
func (w Weights) sum() float64 {
	return w.Recency + w.Frequency + w.Monetary + w.Contact + w.Pattern
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the composite weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.sum() > 0 {
			e.weights = w
		}
	}
}

// WithPatternScorer substitutes the pattern sub-score implementation.
func WithPatternScorer(p PatternScorer) Option {
	return func(e *Engine) {
		if p != nil {
			e.pattern = p
		}
	}
}

// WithFactorOptions passes window options through to the frequency and
// monetary calculators.
func WithFactorOptions(opts ...factors.Option) Option {
	return func(e *Engine) {
		e.factorOpts = append(e.factorOpts, opts...)
	}
}

// WithContactOptions passes options through to the contact calculator.
func WithContactOptions(opts ...factors.ContactOption) Option {
	return func(e *Engine) {
		e.contactOpts = append(e.contactOpts, opts...)
	}
}

// Engine computes lapse risk scores. It is stateless and safe for
// concurrent use.
type Engine struct {
	weights     Weights
	pattern     PatternScorer
	factorOpts  []factors.Option
	contactOpts []factors.ContactOption
}

// New constructs an Engine with default weights and the neutral pattern
// scorer.
func New(opts ...Option) *Engine {
	e := &Engine{
		weights: DefaultWeights(),
		pattern: NeutralPatternScorer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Input is one constituent's history at a reference time.
type Input struct {
	ConstituentID string
	Gifts         []model.GiftRecord
	Contacts      []model.ContactRecord
	AsOf          time.Time
}

// Result is the lapse risk score with its explanation.
type Result struct {
	ConstituentID        string
	Score                float64 // in [0,1]
	RiskLevel            model.RiskLevel
	Confidence           float64 // in [0,1]
	PredictedLapseWindow string
	Factors              []model.Factor // ranked: impact desc, weight desc
	Description          string
}

// Score computes the weighted composite of the four factors plus the
// pattern signal. The denominator is the sum of the weights actually used,
// so overriding weights keeps the score in [0,1].
func (e *Engine) Score(in Input) Result {
	recency := factors.CalculateRecency(in.Gifts, in.AsOf)
	frequency := factors.CalculateFrequency(in.Gifts, in.AsOf, e.factorOpts...)
	monetary := factors.CalculateMonetary(in.Gifts, in.AsOf, e.factorOpts...)
	contact := factors.CalculateContact(in.Contacts, in.AsOf, e.contactOpts...)
	pattern := model.Clamp01(e.pattern.ScorePattern(in.Gifts, in.Contacts, in.AsOf))

	totalWeight := e.weights.sum()
	if totalWeight <= 0 {
		totalWeight = DefaultWeights().sum()
	}
	weighted := recency.Score*e.weights.Recency +
		frequency.Score*e.weights.Frequency +
		monetary.Score*e.weights.Monetary +
		contact.Score*e.weights.Contact +
		pattern*e.weights.Pattern
	score := model.Clamp01(weighted / totalWeight)

	fs := []model.Factor{
		{Name: "recency", Value: recency.Description, Impact: model.ImpactFor(recency.Score), Weight: e.weights.Recency, RawScore: recency.Score},
		{Name: "frequency", Value: frequency.Description, Impact: model.ImpactFor(frequency.Score), Weight: e.weights.Frequency, RawScore: frequency.Score},
		{Name: "monetary", Value: monetary.Description, Impact: model.ImpactFor(monetary.Score), Weight: e.weights.Monetary, RawScore: monetary.Score},
		{Name: "contact", Value: contact.Description, Impact: model.ImpactFor(contact.Score), Weight: e.weights.Contact, RawScore: contact.Score},
		{Name: "pattern", Value: "no learned pattern signal yet", Impact: model.ImpactFor(pattern), Weight: e.weights.Pattern, RawScore: pattern},
	}
	model.SortFactors(fs)

	level := model.RiskLevelFor(score)
	return Result{
		ConstituentID:        in.ConstituentID,
		Score:                score,
		RiskLevel:            level,
		Confidence:           dataConfidence(len(in.Gifts), len(in.Contacts), recency.MonthsSinceLastGift, spanYears(in.Gifts, in.Contacts)),
		PredictedLapseWindow: lapseWindow(score),
		Factors:              fs,
		Description:          fmt.Sprintf("%s lapse risk (%.2f), driven by %s", level, score, fs[0].Name),
	}
}

// lapseWindow buckets the score into a discrete predicted lapse window.
func lapseWindow(score float64) string {
	switch {
	case score >= windowImmediateAt:
		return WindowImmediate
	case score >= windowNearAt:
		return WindowNear
	case score >= windowMidAt:
		return WindowMid
	case score >= windowFarAt:
		return WindowFar
	default:
		return WindowDistant
	}
}

// dataConfidence sums bounded increments for data volume, recency and span,
// capped at 1.0.
func dataConfidence(giftCount, contactCount int, monthsSinceLastGift, spanYears float64) float64 {
	c := minFloat(float64(giftCount)*confidencePerGift, confidenceGiftCap)
	c += minFloat(float64(contactCount)*confidencePerContact, confidenceContactCap)
	if giftCount > 0 {
		switch {
		case monthsSinceLastGift <= recentGiftMonths:
			c += confidenceRecentGift
		case monthsSinceLastGift <= agingGiftMonths:
			c += confidenceAgingGift
		}
	}
	c += minFloat(spanYears*confidencePerSpanYear, confidenceSpanCap)
	return model.Clamp01(c)
}

// spanYears measures the span in years covered by the combined gift and
// contact history.
func spanYears(gifts []model.GiftRecord, contacts []model.ContactRecord) float64 {
	var earliest, latest time.Time
	seen := false
	observe := func(t time.Time) {
		if !seen {
			earliest, latest = t, t
			seen = true
			return
		}
		if t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	for _, g := range gifts {
		observe(g.Date)
	}
	for _, c := range contacts {
		observe(c.Date)
	}
	if !seen {
		return 0
	}
	return latest.Sub(earliest).Hours() / 24 / 365.25
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
