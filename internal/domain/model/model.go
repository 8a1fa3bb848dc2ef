// Package model contains domain value objects passed between engines.
//
// Everything here is a transient value constructed per invocation from
// caller-supplied data. Engines never own, cache, or mutate these records.
package model

import (
	"sort"
	"time"
)

// GiftRecord is a single gift in a constituent's giving history.
type GiftRecord struct {
	Amount float64   // gift amount in dollars, non-negative
	Date   time.Time // gift date
}

// ContactType classifies how a constituent was contacted.
type ContactType string

// Contact types recognized by the contact factor weight table.
const (
	ContactMeeting ContactType = "meeting"
	ContactCall    ContactType = "call"
	ContactEmail   ContactType = "email"
	ContactEvent   ContactType = "event"
	ContactLetter  ContactType = "letter"
	ContactVisit   ContactType = "visit"
	ContactVideo   ContactType = "video"
	ContactOther   ContactType = "other"
)

// ContactOutcome is the recorded result of a contact, if any.
type ContactOutcome string

// Contact outcomes.
const (
	OutcomePositive   ContactOutcome = "positive"
	OutcomeNeutral    ContactOutcome = "neutral"
	OutcomeNegative   ContactOutcome = "negative"
	OutcomeNoResponse ContactOutcome = "no_response"
)

// ContactRecord is a single touch point with a constituent.
type ContactRecord struct {
	Date    time.Time
	Type    ContactType
	Outcome ContactOutcome // empty when no outcome was recorded
}

// ConstituentSnapshot is the flat identity/contact/address record consumed
// by the data health engine. It carries no behavioral fields.
type ConstituentSnapshot struct {
	ExternalID      string
	Prefix          string
	FirstName       string
	MiddleName      string
	LastName        string
	Suffix          string
	Email           string
	Phone           string
	AddressLine1    string
	AddressLine2    string
	City            string
	State           string
	PostalCode      string
	Country         string
	ConstituentType string // alumni, parent, friend, foundation, corporation
}

// PortfolioTier is a donor's assigned giving-capacity classification.
type PortfolioTier string

// Portfolio tiers, highest capacity first.
const (
	TierMajor      PortfolioTier = "major"
	TierPrincipal  PortfolioTier = "principal"
	TierLeadership PortfolioTier = "leadership"
	TierRegular    PortfolioTier = "regular"
)

// Impact buckets a factor's contribution for display.
type Impact string

// Impact levels.
const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// impactRank orders impacts for sorting, high first.
func impactRank(i Impact) int {
	switch i {
	case ImpactHigh:
		return 0
	case ImpactMedium:
		return 1
	default:
		return 2
	}
}

// Factor is one weighted, human-readable contributor to a composite score.
type Factor struct {
	Name     string  // stable machine name, e.g. "recency"
	Value    string  // human-readable description of the observation
	Impact   Impact  // display bucket derived from RawScore
	Weight   float64 // weight used in the composite, in [0,1]
	RawScore float64 // unweighted sub-score, in [0,1]
}

// ImpactFor buckets a raw sub-score into a display impact using the same
// boundaries as risk levels.
func ImpactFor(rawScore float64) Impact {
	switch {
	case rawScore >= 0.7:
		return ImpactHigh
	case rawScore >= 0.4:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// SortFactors orders factors deterministically: impact descending, then
// weight descending, then name for stability.
func SortFactors(factors []Factor) {
	sort.SliceStable(factors, func(i, j int) bool {
		if impactRank(factors[i].Impact) != impactRank(factors[j].Impact) {
			return impactRank(factors[i].Impact) < impactRank(factors[j].Impact)
		}
		if factors[i].Weight != factors[j].Weight {
			return factors[i].Weight > factors[j].Weight
		}
		return factors[i].Name < factors[j].Name
	})
}

// RiskLevel is the discrete banding of a risk-shaped score.
type RiskLevel string

// Risk levels.
const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Risk level boundaries. Fixed constants, never derived at runtime.
const (
	riskHighThreshold   = 0.70
	riskMediumThreshold = 0.40
)

// RiskLevelFor maps a score in [0,1] onto its risk level: high iff
// score>=0.70, medium iff 0.40<=score<0.70, low otherwise.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= riskHighThreshold:
		return RiskHigh
	case score >= riskMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ConfidenceLevel bands a confidence score.
type ConfidenceLevel string

// Confidence levels.
const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceVeryLow ConfidenceLevel = "very_low"
)

// ConfidenceLevelFor maps a confidence score onto its band: high>=0.75,
// medium>=0.5, low>=0.25, else very_low.
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= 0.75:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.25:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// Severity grades anomalies, issues and imbalance alerts.
type Severity string

// Severities.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityRank orders severities, high first.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// AnomalyType names the detector that produced an anomaly.
type AnomalyType string

// Anomaly types.
const (
	AnomalyEngagementSpike     AnomalyType = "engagement_spike"
	AnomalyGivingPatternChange AnomalyType = "giving_pattern_change"
	AnomalyContactGap          AnomalyType = "contact_gap"
)

// AnomalyFactor is one name/value observation backing an anomaly.
type AnomalyFactor struct {
	Name  string
	Value string
}

// AnomalyResult is a detected deviation from a donor's established pattern.
type AnomalyResult struct {
	ConstituentID string
	Type          AnomalyType
	Severity      Severity
	Title         string
	Description   string
	Factors       []AnomalyFactor
	DetectedAt    time.Time
}

// OfficerPortfolioSummary is the per-officer aggregate consumed by the
// portfolio balance engine.
type OfficerPortfolioSummary struct {
	OfficerID        string
	OfficerName      string
	ConstituentCount int
	TotalCapacity    float64
	AvgPriorityScore float64 // in [0,1]
}

// ImbalanceDetail describes one imbalanced portfolio metric.
type ImbalanceDetail struct {
	Metric                 string // "constituent_count", "total_capacity", "weighted_workload"
	Mean                   float64
	StdDev                 float64 // population standard deviation
	CoefficientOfVariation float64
	Severity               Severity
}

// ImbalanceAlert is a per-officer diagnostic message.
type ImbalanceAlert struct {
	OfficerID      string
	OfficerName    string
	Classification string // "overloaded", "underutilized", "capacity-heavy"
	DeviationPct   float64
	Severity       Severity
	Message        string
}

// Clamp01 pins v to [0,1]. NaN clamps to 0 so downstream math stays finite.
func Clamp01(v float64) float64 {
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
