package health

import (
	"fmt"
	"time"

	"donorpulse/internal/domain/model"
)

// Freshness decay bands over age in days.
const (
	freshDays   = 30
	currentDays = 90
	agingDays   = 180
	yearDays    = 365
	twoYearDays = 730

	freshScore   = 1.0
	currentScore = 0.85
	agingScore   = 0.7
	yearScore    = 0.5
	twoYearScore = 0.3
	ancientScore = 0.1
)

// Freshness sub-score weights.
const (
	freshGiftWeight    = 0.4
	freshContactWeight = 0.4
	freshUploadWeight  = 0.2
)

// FreshnessInput carries the timestamps the freshness score decays over.
// A zero time means no such record exists.
type FreshnessInput struct {
	LastGiftAt    time.Time
	LastContactAt time.Time
	LastUploadAt  time.Time
	AsOf          time.Time
}

// ScoreFreshness applies age-based decay to the last-gift, last-contact and
// last-upload timestamps.
func ScoreFreshness(in FreshnessInput) CategoryResult {
	var issues []Issue

	giftScore := ageScore(in.LastGiftAt, in.AsOf)
	contactScore := ageScore(in.LastContactAt, in.AsOf)
	uploadScore := ageScore(in.LastUploadAt, in.AsOf)

	if issue := stalenessIssue(in.LastGiftAt, in.AsOf, IssueStaleGiftData, "gift data"); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := stalenessIssue(in.LastContactAt, in.AsOf, IssueStaleContactData, "contact data"); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := stalenessIssue(in.LastUploadAt, in.AsOf, IssueStaleUpload, "uploaded data"); issue != nil {
		issues = append(issues, *issue)
	}

	score := giftScore*freshGiftWeight + contactScore*freshContactWeight + uploadScore*freshUploadWeight
	return CategoryResult{
		Name:   "freshness",
		Score:  model.Clamp01(score),
		Issues: issues,
	}
}

// ageScore maps a timestamp's age through the decay band table. Absent
// timestamps score zero.
func ageScore(t, asOf time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	days := int(asOf.Sub(t).Hours() / 24)
	switch {
	case days <= freshDays:
		return freshScore
	case days <= currentDays:
		return currentScore
	case days <= agingDays:
		return agingScore
	case days <= yearDays:
		return yearScore
	case days <= twoYearDays:
		return twoYearScore
	default:
		return ancientScore
	}
}

// stalenessIssue emits an issue for aging or absent timestamps. Severity
// climbs with age.
func stalenessIssue(t, asOf time.Time, issueType IssueType, label string) *Issue {
	if t.IsZero() {
		return &Issue{
			Type:        issueType,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("no %s on record", label),
		}
	}
	days := int(asOf.Sub(t).Hours() / 24)
	switch {
	case days > twoYearDays:
		return &Issue{Type: issueType, Severity: model.SeverityHigh, Description: fmt.Sprintf("%s is over two years old", label)}
	case days > yearDays:
		return &Issue{Type: issueType, Severity: model.SeverityMedium, Description: fmt.Sprintf("%s is over a year old", label)}
	case days > agingDays:
		return &Issue{Type: issueType, Severity: model.SeverityLow, Description: fmt.Sprintf("%s is over six months old", label)}
	default:
		return nil
	}
}
