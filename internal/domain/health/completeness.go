package health

import (
	"fmt"
	"strings"

	"donorpulse/internal/domain/model"
)

// Field presence weights. Required fields weigh 1.0; optional fields weigh
// by how much they matter to fundraising work.
const (
	weightExternalID      = 1.0
	weightLastName        = 1.0
	weightFirstName       = 0.8
	weightEmail           = 0.9
	weightPhone           = 0.6
	weightAddressLine1    = 0.5
	weightCity            = 0.4
	weightState           = 0.4
	weightPostalCode      = 0.4
	weightConstituentType = 0.5
)

// fieldWeight pairs a snapshot field with its weight and requiredness.
type fieldWeight struct {
	name     string
	weight   float64
	required bool
	value    func(model.ConstituentSnapshot) string
}

// completenessFields is the field weight table, in display order.
func completenessFields() []fieldWeight {
	return []fieldWeight{
		{"external_id", weightExternalID, true, func(s model.ConstituentSnapshot) string { return s.ExternalID }},
		{"last_name", weightLastName, true, func(s model.ConstituentSnapshot) string { return s.LastName }},
		{"first_name", weightFirstName, false, func(s model.ConstituentSnapshot) string { return s.FirstName }},
		{"email", weightEmail, false, func(s model.ConstituentSnapshot) string { return s.Email }},
		{"phone", weightPhone, false, func(s model.ConstituentSnapshot) string { return s.Phone }},
		{"address_line1", weightAddressLine1, false, func(s model.ConstituentSnapshot) string { return s.AddressLine1 }},
		{"city", weightCity, false, func(s model.ConstituentSnapshot) string { return s.City }},
		{"state", weightState, false, func(s model.ConstituentSnapshot) string { return s.State }},
		{"postal_code", weightPostalCode, false, func(s model.ConstituentSnapshot) string { return s.PostalCode }},
		{"constituent_type", weightConstituentType, false, func(s model.ConstituentSnapshot) string { return s.ConstituentType }},
	}
}

// ScoreCompleteness checks weighted field presence for one snapshot.
func ScoreCompleteness(s model.ConstituentSnapshot) CategoryResult {
	var present, total float64
	var issues []Issue

	for _, f := range completenessFields() {
		total += f.weight
		if strings.TrimSpace(f.value(s)) != "" {
			present += f.weight
			continue
		}
		if f.required {
			issues = append(issues, Issue{
				Type:          IssueMissingRequired,
				Severity:      model.SeverityHigh,
				Field:         f.name,
				ConstituentID: s.ExternalID,
				Description:   fmt.Sprintf("required field %s is missing", f.name),
			})
		}
	}

	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.Phone) == "" {
		issues = append(issues, Issue{
			Type:          IssueMissingContact,
			Severity:      model.SeverityMedium,
			ConstituentID: s.ExternalID,
			Description:   "no email or phone on record",
		})
	}
	if partialAddress(s) {
		issues = append(issues, Issue{
			Type:          IssueIncompleteAddress,
			Severity:      model.SeverityLow,
			ConstituentID: s.ExternalID,
			Description:   "address is only partially populated",
		})
	}

	score := 0.0
	if total > 0 {
		score = present / total
	}
	return CategoryResult{
		Name:   "completeness",
		Score:  model.Clamp01(score),
		Issues: issues,
	}
}

// BatchCompleteness aggregates completeness across many snapshots.
type BatchCompleteness struct {
	CategoryResult
	FieldFillRates map[string]float64 // fraction of records with each field populated
	IssueCounts    map[IssueType]int
}

// ScoreCompletenessBatch averages per-record completeness and tracks
// per-field fill rates and issue counts by type.
func ScoreCompletenessBatch(snapshots []model.ConstituentSnapshot) BatchCompleteness {
	out := BatchCompleteness{
		CategoryResult: CategoryResult{Name: "completeness"},
		FieldFillRates: make(map[string]float64),
		IssueCounts:    make(map[IssueType]int),
	}
	if len(snapshots) == 0 {
		return out
	}

	fields := completenessFields()
	fills := make(map[string]int, len(fields))
	sum := 0.0
	for _, s := range snapshots {
		r := ScoreCompleteness(s)
		sum += r.Score
		out.Issues = append(out.Issues, r.Issues...)
		for _, i := range r.Issues {
			out.IssueCounts[i.Type]++
		}
		for _, f := range fields {
			if strings.TrimSpace(f.value(s)) != "" {
				fills[f.name]++
			}
		}
	}
	for _, f := range fields {
		out.FieldFillRates[f.name] = float64(fills[f.name]) / float64(len(snapshots))
	}
	out.Score = model.Clamp01(sum / float64(len(snapshots)))
	return out
}

// partialAddress reports an address with some parts present and others
// missing.
func partialAddress(s model.ConstituentSnapshot) bool {
	parts := []string{s.AddressLine1, s.City, s.State, s.PostalCode}
	filled := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filled++
		}
	}
	return filled > 0 && filled < len(parts)
}
