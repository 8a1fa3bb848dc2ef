package health

import (
	"fmt"

	"donorpulse/internal/domain/model"
)

// Coverage sub-score weights.
const (
	coverageAssignedWeight = 0.4
	coverageContactWeight  = 0.3
	coverageGiftWeight     = 0.3
)

// Coverage issue thresholds, as fractions of the database.
const (
	coverageUnassignedWarn = 0.25 // more than this fraction unassigned is worth flagging
	coverageContactWarn    = 0.50
	coverageGiftWarn       = 0.50
)

// CoverageInput counts how much of the database is being worked.
type CoverageInput struct {
	TotalConstituents int
	AssignedToOfficer int // constituents with a portfolio assignment
	WithContactRecord int // constituents with at least one contact logged
	WithGiftRecord    int // constituents with at least one gift on file

	// Imbalances from the portfolio balance engine, folded in as issues.
	Imbalances []model.ImbalanceDetail
}

// ScoreCoverage measures what fraction of the database has officer
// assignments, contact history and gift history.
func ScoreCoverage(in CoverageInput) CategoryResult {
	if in.TotalConstituents <= 0 {
		return CategoryResult{Name: "coverage"}
	}

	total := float64(in.TotalConstituents)
	assignedRatio := float64(in.AssignedToOfficer) / total
	contactRatio := float64(in.WithContactRecord) / total
	giftRatio := float64(in.WithGiftRecord) / total

	var issues []Issue
	if 1-assignedRatio > coverageUnassignedWarn {
		issues = append(issues, Issue{
			Type:        IssueUnassigned,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("%.0f%% of constituents have no officer assignment", (1-assignedRatio)*100),
		})
	}
	if 1-contactRatio > coverageContactWarn {
		issues = append(issues, Issue{
			Type:        IssueNoContactCoverage,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("%.0f%% of constituents have no contact history", (1-contactRatio)*100),
		})
	}
	if 1-giftRatio > coverageGiftWarn {
		issues = append(issues, Issue{
			Type:        IssueNoGiftCoverage,
			Severity:    model.SeverityLow,
			Description: fmt.Sprintf("%.0f%% of constituents have no gift history", (1-giftRatio)*100),
		})
	}

	for _, im := range in.Imbalances {
		issues = append(issues, Issue{
			Type:     IssueAssignmentImbalance,
			Severity: im.Severity,
			Field:    im.Metric,
			Description: fmt.Sprintf("portfolio %s is unevenly distributed (coefficient of variation %.2f)",
				im.Metric, im.CoefficientOfVariation),
		})
	}

	score := assignedRatio*coverageAssignedWeight +
		contactRatio*coverageContactWeight +
		giftRatio*coverageGiftWeight

	return CategoryResult{
		Name:   "coverage",
		Score:  model.Clamp01(score),
		Issues: issues,
	}
}
