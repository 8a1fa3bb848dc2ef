// Package health scores the quality of a constituent database across four
// categories: completeness, freshness, consistency and coverage. Each
// sub-scorer returns a score in [0,1] plus itemized issues; the aggregate
// report merges issues and drives template-based recommendations.
package health

import (
	"sort"

	"donorpulse/internal/domain/model"
)

// Category weights for the overall health score.
const (
	completenessWeight = 0.30
	consistencyWeight  = 0.30
	freshnessWeight    = 0.20
	coverageWeight     = 0.20
)

// IssueType names a distinct data quality problem. Recommendation templates
// key off these.
type IssueType string

// Issue types.
const (
	IssueMissingRequired     IssueType = "missing_required"
	IssueMissingContact      IssueType = "missing_contact"
	IssueIncompleteAddress   IssueType = "incomplete_address"
	IssueStaleGiftData       IssueType = "stale_gift_data"
	IssueStaleContactData    IssueType = "stale_contact_data"
	IssueStaleUpload         IssueType = "stale_upload"
	IssueInvalidEmail        IssueType = "invalid_email"
	IssueInvalidPhone        IssueType = "invalid_phone"
	IssueInvalidState        IssueType = "invalid_state"
	IssueInvalidPostalCode   IssueType = "invalid_postal_code"
	IssueNameFormat          IssueType = "name_format"
	IssuePlaceholderValue    IssueType = "placeholder_value"
	IssuePartialAddress      IssueType = "partial_address"
	IssueMissingStreet       IssueType = "missing_street"
	IssueDuplicateRecord     IssueType = "duplicate_record"
	IssueUnassigned          IssueType = "unassigned_constituents"
	IssueNoContactCoverage   IssueType = "no_contact_coverage"
	IssueNoGiftCoverage      IssueType = "no_gift_coverage"
	IssueAssignmentImbalance IssueType = "assignment_imbalance"
)

// Issue is one observed data quality problem.
type Issue struct {
	Type          IssueType
	Severity      model.Severity
	Field         string // offending field, when field-scoped
	ConstituentID string // offending record, when record-scoped
	Description   string
}

// CategoryResult is the output of one health sub-scorer.
type CategoryResult struct {
	Name   string
	Score  float64 // in [0,1]
	Issues []Issue
}

// Report is the aggregate health assessment.
type Report struct {
	OverallScore     float64
	Completeness     CategoryResult
	Freshness        CategoryResult
	Consistency      CategoryResult
	Coverage         CategoryResult
	Issues           []Issue // merged from all categories, severity descending
	Recommendations  []Recommendation
	ConstituentCount int
}

// BuildReport combines the four category results into an overall score,
// merges and sorts issues, and generates recommendations.
func BuildReport(constituentCount int, completeness, freshness, consistency, coverage CategoryResult) Report {
	overall := model.Clamp01(completeness.Score*completenessWeight +
		consistency.Score*consistencyWeight +
		freshness.Score*freshnessWeight +
		coverage.Score*coverageWeight)

	merged := make([]Issue, 0, len(completeness.Issues)+len(freshness.Issues)+len(consistency.Issues)+len(coverage.Issues))
	merged = append(merged, completeness.Issues...)
	merged = append(merged, freshness.Issues...)
	merged = append(merged, consistency.Issues...)
	merged = append(merged, coverage.Issues...)
	sort.SliceStable(merged, func(i, j int) bool {
		return model.SeverityRank(merged[i].Severity) < model.SeverityRank(merged[j].Severity)
	})

	return Report{
		OverallScore:     overall,
		Completeness:     completeness,
		Freshness:        freshness,
		Consistency:      consistency,
		Coverage:         coverage,
		Issues:           merged,
		Recommendations:  Recommend(merged, constituentCount, overall),
		ConstituentCount: constituentCount,
	}
}
