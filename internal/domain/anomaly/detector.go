// Package anomaly detects deviations from a donor's established giving and
// contact patterns. Three independent detectors each return at most one
// result per call; the aggregator runs all three and concatenates.
package anomaly

import (
	"sort"
	"time"

	"donorpulse/internal/domain/model"
)

// Input is one constituent's data at a reference time. DetectedAt on every
// result is the reference time, never the system clock.
type Input struct {
	ConstituentID     string
	Gifts             []model.GiftRecord
	Contacts          []model.ContactRecord
	PortfolioTier     model.PortfolioTier // empty when unassigned
	EstimatedCapacity float64
	CapacityKnown     bool
	AsOf              time.Time
}

// Detect runs all three detectors and concatenates their results.
func Detect(in Input) []model.AnomalyResult {
	var results []model.AnomalyResult
	if r := DetectEngagementSpike(in); r != nil {
		results = append(results, *r)
	}
	if r := DetectGivingPatternChange(in); r != nil {
		results = append(results, *r)
	}
	if r := DetectContactGap(in); r != nil {
		results = append(results, *r)
	}
	return results
}

// ConstituentAnomalies pairs a constituent with its detected anomalies.
type ConstituentAnomalies struct {
	ConstituentID string
	Anomalies     []model.AnomalyResult
}

// DetectBatch runs detection across many constituents and returns only
// those with at least one anomaly, in input order.
func DetectBatch(inputs []Input) []ConstituentAnomalies {
	var out []ConstituentAnomalies
	for _, in := range inputs {
		if results := Detect(in); len(results) > 0 {
			out = append(out, ConstituentAnomalies{ConstituentID: in.ConstituentID, Anomalies: results})
		}
	}
	return out
}

// FilterBySeverity keeps results at the given severity.
func FilterBySeverity(results []model.AnomalyResult, severity model.Severity) []model.AnomalyResult {
	var out []model.AnomalyResult
	for _, r := range results {
		if r.Severity == severity {
			out = append(out, r)
		}
	}
	return out
}

// FilterByType keeps results of the given anomaly type.
func FilterByType(results []model.AnomalyResult, t model.AnomalyType) []model.AnomalyResult {
	var out []model.AnomalyResult
	for _, r := range results {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// SortByPriority orders results severity descending, then detection time
// descending. The input slice is not modified.
func SortByPriority(results []model.AnomalyResult) []model.AnomalyResult {
	out := make([]model.AnomalyResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := model.SeverityRank(out[i].Severity), model.SeverityRank(out[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

// giftsBetween returns gifts with start < date <= end.
func giftsBetween(gifts []model.GiftRecord, start, end time.Time) []model.GiftRecord {
	var out []model.GiftRecord
	for _, g := range gifts {
		if g.Date.After(start) && !g.Date.After(end) {
			out = append(out, g)
		}
	}
	return out
}

// giftStats returns count, total, average and max amount for a gift set.
// Average is zero for an empty set.
func giftStats(gifts []model.GiftRecord) (count int, total, avg, maxAmount float64) {
	for _, g := range gifts {
		count++
		total += g.Amount
		if g.Amount > maxAmount {
			maxAmount = g.Amount
		}
	}
	if count > 0 {
		avg = total / float64(count)
	}
	return count, total, avg, maxAmount
}

// monthsBetween returns fractional months from a to b, clamped at zero.
func monthsBetween(a, b time.Time) float64 {
	days := b.Sub(a).Hours() / 24
	if days < 0 {
		return 0
	}
	return days / 30.44
}
