// Package priority scores outreach priority for a constituent from
// capacity, lapse urgency, timing and engagement. The composition pattern
// mirrors the lapse risk engine; lapse risk arrives as an already-computed
// input, never by calling that engine here.
package priority

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/confidence"
	"donorpulse/internal/domain/model"
)

// Sub-factor weights.
const (
	defaultCapacityWeight   = 0.35
	defaultUrgencyWeight    = 0.30
	defaultTimingWeight     = 0.15
	defaultEngagementWeight = 0.20
)

// Capacity score bands in dollars.
const (
	capacityBand1M   = 1_000_000.0
	capacityBand500K = 500_000.0
	capacityBand250K = 250_000.0
	capacityBand100K = 100_000.0
	capacityBand50K  = 50_000.0
	capacityBand25K  = 25_000.0
	capacityBand10K  = 10_000.0
	capacityBand5K   = 5_000.0

	// Neutral fallback when no capacity estimate exists.
	capacityUnknownScore = 0.30
)

// Timing bands on months to fiscal year end, plus a per-campaign bump.
const (
	timingUrgentMonths = 1.0
	timingCloseMonths  = 2.0
	timingNearMonths   = 3.0
	timingMidMonths    = 6.0

	timingUrgentScore  = 1.0
	timingCloseScore   = 0.8
	timingNearScore    = 0.6
	timingMidScore     = 0.4
	timingBaseScore    = 0.3
	timingCampaignBump = 0.1
)

// Engagement normalization targets.
const (
	engagementContactTarget = 4.0 // contacts in the trailing 12 months
	engagementGiftTarget    = 3.0 // gifts in the trailing 24 months
	engagementContactMonths = 12
	engagementGiftMonths    = 24
)

// Weights configures the composite.
type Weights struct {
	Capacity   float64
	Urgency    float64
	Timing     float64
	Engagement float64
}

// DefaultWeights returns the fixed default sub-factor weights.
func DefaultWeights() Weights {
	return Weights{
		Capacity:   defaultCapacityWeight,
		Urgency:    defaultUrgencyWeight,
		Timing:     defaultTimingWeight,
		Engagement: defaultEngagementWeight,
	}
}

func (w Weights) sum() float64 {
	return w.Capacity + w.Urgency + w.Timing + w.Engagement
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

// Engine computes priority scores. Stateless, safe for concurrent use.
type Engine struct {
	weights Weights
}

// New constructs an Engine with default weights.
func New(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TimingContext carries fundraising-calendar context for the timing
// sub-factor.
type TimingContext struct {
	FiscalYearEnd   time.Time // next fiscal year end after AsOf; zero when unknown
	ActiveCampaigns int
}

// Input is everything the priority score needs, already computed. Capacity
// nullability is resolved at the boundary: CapacityKnown=false means no
// estimate exists and the neutral fallback applies.
type Input struct {
	ConstituentID         string
	Capacity              float64
	CapacityKnown         bool
	LapseRiskScore        float64 // output of the lapse risk engine
	Timing                TimingContext
	Gifts                 []model.GiftRecord
	Contacts              []model.ContactRecord
	RequiredFieldsPresent bool
	ContactInfoPresent    bool
	AsOf                  time.Time
}

// Result is the priority score with its explanation.
type Result struct {
	ConstituentID string
	Score         float64 // in [0,1]
	Level         model.RiskLevel
	Confidence    float64 // in [0,1]
	Factors       []model.Factor
	Description   string
}

// Score computes the weighted priority composite. Every ratio guards its
// denominator; the function is pure so it can run in tight batch loops.
func (e *Engine) Score(in Input) Result {
	capScore := capacityScore(in.Capacity, in.CapacityKnown)
	urgency := model.Clamp01(in.LapseRiskScore)
	timing := timingScore(in.Timing, in.AsOf)
	engagement := engagementScore(in.Gifts, in.Contacts, in.AsOf)

	total := e.weights.sum()
	if total <= 0 {
		total = DefaultWeights().sum()
	}
	score := model.Clamp01((capScore*e.weights.Capacity +
		urgency*e.weights.Urgency +
		timing*e.weights.Timing +
		engagement*e.weights.Engagement) / total)

	fs := []model.Factor{
		{Name: "capacity", Value: describeCapacity(in.Capacity, in.CapacityKnown), Impact: model.ImpactFor(capScore), Weight: e.weights.Capacity, RawScore: capScore},
		{Name: "lapse_urgency", Value: fmt.Sprintf("lapse risk score %.2f", urgency), Impact: model.ImpactFor(urgency), Weight: e.weights.Urgency, RawScore: urgency},
		{Name: "timing", Value: describeTiming(in.Timing, in.AsOf), Impact: model.ImpactFor(timing), Weight: e.weights.Timing, RawScore: timing},
		{Name: "engagement", Value: fmt.Sprintf("%d contacts and %d gifts in the recent windows", countContactsSince(in.Contacts, in.AsOf.AddDate(0, -engagementContactMonths, 0), in.AsOf), countGiftsSince(in.Gifts, in.AsOf.AddDate(0, -engagementGiftMonths, 0), in.AsOf)), Impact: model.ImpactFor(engagement), Weight: e.weights.Engagement, RawScore: engagement},
	}
	model.SortFactors(fs)

	conf := confidence.Score(confidenceSignals(in))

	level := model.RiskLevelFor(score)
	return Result{
		ConstituentID: in.ConstituentID,
		Score:         score,
		Level:         level,
		Confidence:    conf.Score,
		Factors:       fs,
		Description:   fmt.Sprintf("%s outreach priority (%.2f), driven by %s", level, score, fs[0].Name),
	}
}

// SummarizeOfficer folds a set of priority scores and capacities into the
// per-officer aggregate consumed by the portfolio balance engine.
func SummarizeOfficer(officerID, officerName string, scores []float64, totalCapacity float64) model.OfficerPortfolioSummary {
	avg := 0.0
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}
	return model.OfficerPortfolioSummary{
		OfficerID:        officerID,
		OfficerName:      officerName,
		ConstituentCount: len(scores),
		TotalCapacity:    totalCapacity,
		AvgPriorityScore: model.Clamp01(avg),
	}
}

func capacityScore(capacity float64, known bool) float64 {
	if !known {
		return capacityUnknownScore
	}
	switch {
	case capacity >= capacityBand1M:
		return 1.0
	case capacity >= capacityBand500K:
		return 0.9
	case capacity >= capacityBand250K:
		return 0.8
	case capacity >= capacityBand100K:
		return 0.7
	case capacity >= capacityBand50K:
		return 0.55
	case capacity >= capacityBand25K:
		return 0.45
	case capacity >= capacityBand10K:
		return 0.35
	case capacity >= capacityBand5K:
		return 0.25
	case capacity > 0:
		return 0.15
	default:
		return capacityUnknownScore
	}
}

func timingScore(t TimingContext, asOf time.Time) float64 {
	score := timingBaseScore
	if !t.FiscalYearEnd.IsZero() && t.FiscalYearEnd.After(asOf) {
		months := t.FiscalYearEnd.Sub(asOf).Hours() / 24 / 30.44
		switch {
		case months <= timingUrgentMonths:
			score = timingUrgentScore
		case months <= timingCloseMonths:
			score = timingCloseScore
		case months <= timingNearMonths:
			score = timingNearScore
		case months <= timingMidMonths:
			score = timingMidScore
		}
	}
	score += float64(t.ActiveCampaigns) * timingCampaignBump
	return model.Clamp01(score)
}

func engagementScore(gifts []model.GiftRecord, contacts []model.ContactRecord, asOf time.Time) float64 {
	contactRatio := model.Clamp01(float64(countContactsSince(contacts, asOf.AddDate(0, -engagementContactMonths, 0), asOf)) / engagementContactTarget)
	giftRatio := model.Clamp01(float64(countGiftsSince(gifts, asOf.AddDate(0, -engagementGiftMonths, 0), asOf)) / engagementGiftTarget)
	return model.Clamp01((contactRatio + giftRatio) / 2)
}

func countGiftsSince(gifts []model.GiftRecord, start, end time.Time) int {
	n := 0
	for _, g := range gifts {
		if g.Date.After(start) && !g.Date.After(end) {
			n++
		}
	}
	return n
}

func countContactsSince(contacts []model.ContactRecord, start, end time.Time) int {
	n := 0
	for _, c := range contacts {
		if c.Date.After(start) && !c.Date.After(end) {
			n++
		}
	}
	return n
}

func confidenceSignals(in Input) confidence.Signals {
	sig := confidence.Signals{
		GiftCount:             len(in.Gifts),
		ContactCount:          len(in.Contacts),
		DaysSinceLastGift:     -1,
		DaysSinceLastContact:  -1,
		RequiredFieldsPresent: in.RequiredFieldsPresent,
		ContactInfoPresent:    in.ContactInfoPresent,
	}
	var earliest, latest time.Time
	for _, g := range in.Gifts {
		if earliest.IsZero() || g.Date.Before(earliest) {
			earliest = g.Date
		}
		if latest.IsZero() || g.Date.After(latest) {
			latest = g.Date
		}
		if d := int(in.AsOf.Sub(g.Date).Hours() / 24); d >= 0 && (sig.DaysSinceLastGift < 0 || d < sig.DaysSinceLastGift) {
			sig.DaysSinceLastGift = d
		}
	}
	for _, c := range in.Contacts {
		if earliest.IsZero() || c.Date.Before(earliest) {
			earliest = c.Date
		}
		if latest.IsZero() || c.Date.After(latest) {
			latest = c.Date
		}
		if d := int(in.AsOf.Sub(c.Date).Hours() / 24); d >= 0 && (sig.DaysSinceLastContact < 0 || d < sig.DaysSinceLastContact) {
			sig.DaysSinceLastContact = d
		}
	}
	if !earliest.IsZero() {
		sig.DataSpanYears = latest.Sub(earliest).Hours() / 24 / 365.25
	}
	return sig
}

func describeCapacity(capacity float64, known bool) string {
	if !known {
		return "no capacity estimate on file"
	}
	return fmt.Sprintf("estimated capacity $%.0f", capacity)
}

func describeTiming(t TimingContext, asOf time.Time) string {
	if t.FiscalYearEnd.IsZero() {
		return fmt.Sprintf("%d active campaigns, fiscal year end unknown", t.ActiveCampaigns)
	}
	months := t.FiscalYearEnd.Sub(asOf).Hours() / 24 / 30.44
	return fmt.Sprintf("%.1f months to fiscal year end, %d active campaigns", months, t.ActiveCampaigns)
}
