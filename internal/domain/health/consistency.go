package health

import (
	"fmt"
	"regexp"
	"strings"

	"donorpulse/internal/domain/model"
)

// Consistency category weights.
const (
	consistEmailWeight   = 0.30
	consistPhoneWeight   = 0.20
	consistAddressWeight = 0.25
	consistNameWeight    = 0.25
)

// Per-problem penalty inside a category.
const consistencyPenalty = 0.25

// Format validators. Compiled once; these are package defaults per the
// constant-table convention.
var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Accepted US phone formats.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`),
		regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`),
		regexp.MustCompile(`^\d{3}\.\d{3}\.\d{4}$`),
		regexp.MustCompile(`^\d{10}$`),
		regexp.MustCompile(`^\+1[ \-]?\(?\d{3}\)?[ \-]?\d{3}[ \-]?\d{4}$`),
	}

	stateRe    = regexp.MustCompile(`^[A-Z]{2}$`)
	usPostalRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	caPostalRe = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`)

	nameDigitsRe  = regexp.MustCompile(`\d`)
	nameUnusualRe = regexp.MustCompile(`[^a-zA-Z\s\-'.,&]`)
)

// placeholderValues are throwaway strings that show up in name fields.
var placeholderValues = map[string]bool{
	"test": true, "n/a": true, "na": true, "none": true,
	"unknown": true, "tbd": true, "xxx": true, "x": true,
}

// ScoreConsistency validates formats on one snapshot: email shape, phone
// shape, state/postal codes with address cross-checks, and name heuristics.
func ScoreConsistency(s model.ConstituentSnapshot) CategoryResult {
	var issues []Issue

	emailScore := 1.0
	if email := strings.TrimSpace(s.Email); email != "" && !emailRe.MatchString(email) {
		emailScore = 0.0
		issues = append(issues, Issue{
			Type:          IssueInvalidEmail,
			Severity:      model.SeverityMedium,
			Field:         "email",
			ConstituentID: s.ExternalID,
			Description:   "email does not match a valid format",
		})
	}

	phoneScore := 1.0
	if phone := strings.TrimSpace(s.Phone); phone != "" && !validPhone(phone) {
		phoneScore = 0.0
		issues = append(issues, Issue{
			Type:          IssueInvalidPhone,
			Severity:      model.SeverityLow,
			Field:         "phone",
			ConstituentID: s.ExternalID,
			Description:   "phone does not match a recognized format",
		})
	}

	addressScore, addressIssues := checkAddress(s)
	issues = append(issues, addressIssues...)

	nameScore, nameIssues := checkNames(s)
	issues = append(issues, nameIssues...)

	score := emailScore*consistEmailWeight +
		phoneScore*consistPhoneWeight +
		addressScore*consistAddressWeight +
		nameScore*consistNameWeight

	return CategoryResult{
		Name:   "consistency",
		Score:  model.Clamp01(score),
		Issues: issues,
	}
}

// BatchConsistency aggregates consistency across many snapshots.
type BatchConsistency struct {
	CategoryResult
	CategoryAverages map[string]float64 // email/phone/address/name averages
	IssueCounts      map[IssueType]int
}

// ScoreConsistencyBatch averages per-record consistency, tracks category
// averages and issue counts, and flags duplicate records.
func ScoreConsistencyBatch(snapshots []model.ConstituentSnapshot) BatchConsistency {
	out := BatchConsistency{
		CategoryResult:   CategoryResult{Name: "consistency"},
		CategoryAverages: make(map[string]float64),
		IssueCounts:      make(map[IssueType]int),
	}
	if len(snapshots) == 0 {
		return out
	}

	var sum, emailSum, phoneSum, addressSum, nameSum float64
	for _, s := range snapshots {
		r := ScoreConsistency(s)
		sum += r.Score
		out.Issues = append(out.Issues, r.Issues...)
		for _, i := range r.Issues {
			out.IssueCounts[i.Type]++
		}

		emailOK, phoneOK := 1.0, 1.0
		if e := strings.TrimSpace(s.Email); e != "" && !emailRe.MatchString(e) {
			emailOK = 0
		}
		if p := strings.TrimSpace(s.Phone); p != "" && !validPhone(p) {
			phoneOK = 0
		}
		addrScore, _ := checkAddress(s)
		nmScore, _ := checkNames(s)
		emailSum += emailOK
		phoneSum += phoneOK
		addressSum += addrScore
		nameSum += nmScore
	}

	n := float64(len(snapshots))
	out.CategoryAverages["email"] = emailSum / n
	out.CategoryAverages["phone"] = phoneSum / n
	out.CategoryAverages["address"] = addressSum / n
	out.CategoryAverages["name"] = nameSum / n

	for _, group := range FindDuplicates(snapshots) {
		out.Issues = append(out.Issues, Issue{
			Type:        IssueDuplicateRecord,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("%d records share the same identity: %s", len(group), strings.Join(group, ", ")),
		})
		out.IssueCounts[IssueDuplicateRecord]++
	}

	out.Score = model.Clamp01(sum / n)
	return out
}

// FindDuplicates groups constituents by case-insensitive exact match on
// email, and on first+last name, returning the external IDs of each group
// with more than one member.
func FindDuplicates(snapshots []model.ConstituentSnapshot) [][]string {
	byEmail := make(map[string][]string)
	byName := make(map[string][]string)
	for _, s := range snapshots {
		if email := strings.ToLower(strings.TrimSpace(s.Email)); email != "" {
			byEmail[email] = append(byEmail[email], s.ExternalID)
		}
		first := strings.ToLower(strings.TrimSpace(s.FirstName))
		last := strings.ToLower(strings.TrimSpace(s.LastName))
		if first != "" && last != "" {
			byName[first+"|"+last] = append(byName[first+"|"+last], s.ExternalID)
		}
	}

	var groups [][]string
	seen := make(map[string]bool)
	collect := func(m map[string][]string) {
		for _, ids := range m {
			if len(ids) < 2 {
				continue
			}
			key := strings.Join(ids, "|")
			if seen[key] {
				continue
			}
			seen[key] = true
			groups = append(groups, ids)
		}
	}
	collect(byEmail)
	collect(byName)
	return groups
}

func validPhone(phone string) bool {
	for _, re := range phoneRes {
		if re.MatchString(phone) {
			return true
		}
	}
	return false
}

// checkAddress validates state and postal formats and cross-checks address
// completeness: a street without city/state/postal, or city-state-postal
// without a street, are both flagged.
func checkAddress(s model.ConstituentSnapshot) (float64, []Issue) {
	var issues []Issue
	score := 1.0

	if state := strings.TrimSpace(s.State); state != "" && !stateRe.MatchString(state) {
		score -= consistencyPenalty
		issues = append(issues, Issue{
			Type:          IssueInvalidState,
			Severity:      model.SeverityLow,
			Field:         "state",
			ConstituentID: s.ExternalID,
			Description:   "state is not a two-letter code",
		})
	}
	if postal := strings.TrimSpace(s.PostalCode); postal != "" &&
		!usPostalRe.MatchString(postal) && !caPostalRe.MatchString(postal) {
		score -= consistencyPenalty
		issues = append(issues, Issue{
			Type:          IssueInvalidPostalCode,
			Severity:      model.SeverityLow,
			Field:         "postal_code",
			ConstituentID: s.ExternalID,
			Description:   "postal code is neither US nor Canadian format",
		})
	}

	street := strings.TrimSpace(s.AddressLine1) != ""
	cityStatePostal := strings.TrimSpace(s.City) != "" &&
		strings.TrimSpace(s.State) != "" &&
		strings.TrimSpace(s.PostalCode) != ""
	switch {
	case street && !cityStatePostal:
		score -= consistencyPenalty
		issues = append(issues, Issue{
			Type:          IssuePartialAddress,
			Severity:      model.SeverityLow,
			ConstituentID: s.ExternalID,
			Description:   "street present without full city/state/postal",
		})
	case !street && cityStatePostal:
		score -= consistencyPenalty
		issues = append(issues, Issue{
			Type:          IssueMissingStreet,
			Severity:      model.SeverityLow,
			ConstituentID: s.ExternalID,
			Description:   "city/state/postal present without a street address",
		})
	}

	if score < 0 {
		score = 0
	}
	return score, issues
}

// checkNames applies format heuristics to the name fields.
func checkNames(s model.ConstituentSnapshot) (float64, []Issue) {
	var issues []Issue
	score := 1.0

	for _, f := range []struct{ field, value string }{
		{"first_name", s.FirstName},
		{"last_name", s.LastName},
	} {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if placeholderValues[strings.ToLower(v)] {
			score -= consistencyPenalty
			issues = append(issues, Issue{
				Type:          IssuePlaceholderValue,
				Severity:      model.SeverityMedium,
				Field:         f.field,
				ConstituentID: s.ExternalID,
				Description:   fmt.Sprintf("%s looks like a placeholder value", f.field),
			})
			continue
		}
		if flaw := nameFlaw(v); flaw != "" {
			score -= consistencyPenalty
			issues = append(issues, Issue{
				Type:          IssueNameFormat,
				Severity:      model.SeverityLow,
				Field:         f.field,
				ConstituentID: s.ExternalID,
				Description:   fmt.Sprintf("%s %s", f.field, flaw),
			})
		}
	}

	if score < 0 {
		score = 0
	}
	return score, issues
}

// nameFlaw returns a description of the first format heuristic a name value
// trips, or empty when clean.
func nameFlaw(v string) string {
	switch {
	case nameDigitsRe.MatchString(v):
		return "contains digits"
	case nameUnusualRe.MatchString(v):
		return "contains unusual characters"
	case len(v) > 1 && v == strings.ToUpper(v) && strings.ContainsAny(v, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
		return "is all capital letters"
	case v == strings.ToLower(v):
		return "is all lowercase"
	default:
		return ""
	}
}
