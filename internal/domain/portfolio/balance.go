// Package portfolio measures how evenly work is distributed across gift
// officers. It computes the coefficient of variation over portfolio size,
// total capacity and weighted workload, flags metrics whose spread crosses a
// threshold, and classifies individual officers as overloaded, underutilized
// or capacity-heavy.
package portfolio

import (
	"fmt"
	"math"
	"sort"

	"donorpulse/internal/domain/model"
)

// Metric names reported in imbalance details.
const (
	MetricConstituentCount = "constituent_count"
	MetricTotalCapacity    = "total_capacity"
	MetricWeightedWorkload = "weighted_workload"
)

// Coefficient-of-variation thresholds.
const (
	defaultCVThreshold = 0.5
	cvMediumMultiple   = 1.5
	cvHighMultiple     = 2.0
)

// Per-officer deviation thresholds, as fractions of the mean.
const (
	overloadedDeviation    = 0.5  // more than 50% above mean workload
	underutilizedDeviation = -0.5 // more than 50% below mean workload
	capacityHeavyRatio     = 1.5  // capacity at least 1.5x mean with ordinary size
	capacityHeavySizeBand  = 0.5  // size within +/-50% of mean counts as ordinary
)

// Officer classifications.
const (
	ClassOverloaded    = "overloaded"
	ClassUnderutilized = "underutilized"
	ClassCapacityHeavy = "capacity-heavy"
	ClassBalanced      = "balanced"
)

// Analyzer computes portfolio balance reports.
type Analyzer struct {
	cvThreshold float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCVThreshold overrides the coefficient-of-variation threshold above
// which a metric is reported as imbalanced.
func WithCVThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t > 0 {
			a.cvThreshold = t
		}
	}
}

// New builds an Analyzer with the default threshold unless overridden.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{cvThreshold: defaultCVThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Report is the full balance assessment for a set of officer portfolios.
type Report struct {
	Balanced   bool
	Imbalances []model.ImbalanceDetail
	Alerts     []model.ImbalanceAlert
	Officers   []model.OfficerPortfolioSummary
}

// Analyze computes balance across the given portfolios. Fewer than two
// portfolios cannot be imbalanced relative to each other and yield a
// balanced report.
func (a *Analyzer) Analyze(officers []model.OfficerPortfolioSummary) Report {
	report := Report{Balanced: true, Officers: officers}
	if len(officers) < 2 {
		return report
	}

	counts := make([]float64, len(officers))
	capacities := make([]float64, len(officers))
	workloads := make([]float64, len(officers))
	for i, o := range officers {
		counts[i] = float64(o.ConstituentCount)
		capacities[i] = o.TotalCapacity
		workloads[i] = o.AvgPriorityScore * float64(o.ConstituentCount)
	}

	for _, m := range []struct {
		name   string
		values []float64
	}{
		{MetricConstituentCount, counts},
		{MetricTotalCapacity, capacities},
		{MetricWeightedWorkload, workloads},
	} {
		if detail, ok := a.imbalance(m.name, m.values); ok {
			report.Imbalances = append(report.Imbalances, detail)
		}
	}
	report.Balanced = len(report.Imbalances) == 0

	report.Alerts = a.classify(officers, counts, capacities, workloads)
	return report
}

// imbalance computes mean, population standard deviation and coefficient of
// variation for one metric, reporting it when the CV exceeds the threshold.
func (a *Analyzer) imbalance(metric string, values []float64) (model.ImbalanceDetail, bool) {
	m := mean(values)
	if m == 0 {
		return model.ImbalanceDetail{}, false
	}
	sd := stdDev(values, m)
	cv := sd / m
	if cv <= a.cvThreshold {
		return model.ImbalanceDetail{}, false
	}

	severity := model.SeverityLow
	if cv > cvMediumMultiple*a.cvThreshold {
		severity = model.SeverityMedium
	}
	if cv > cvHighMultiple*a.cvThreshold {
		severity = model.SeverityHigh
	}

	return model.ImbalanceDetail{
		Metric:                 metric,
		Mean:                   m,
		StdDev:                 sd,
		CoefficientOfVariation: cv,
		Severity:               severity,
	}, true
}

// classify produces per-officer alerts: overloaded and underutilized are
// driven by weighted workload deviation, capacity-heavy by holding far more
// capacity than peers while carrying an ordinary portfolio size.
func (a *Analyzer) classify(officers []model.OfficerPortfolioSummary, counts, capacities, workloads []float64) []model.ImbalanceAlert {
	meanCount := mean(counts)
	meanCapacity := mean(capacities)
	meanWorkload := mean(workloads)

	var alerts []model.ImbalanceAlert
	for i, o := range officers {
		workloadDev := deviation(workloads[i], meanWorkload)
		capacityDev := deviation(capacities[i], meanCapacity)
		countDev := deviation(counts[i], meanCount)

		var class string
		var dev float64
		switch {
		case meanWorkload > 0 && workloadDev > overloadedDeviation:
			class, dev = ClassOverloaded, workloadDev
		case meanWorkload > 0 && workloadDev < underutilizedDeviation:
			class, dev = ClassUnderutilized, workloadDev
		case meanCapacity > 0 && capacities[i] >= capacityHeavyRatio*meanCapacity &&
			math.Abs(countDev) <= capacityHeavySizeBand:
			class, dev = ClassCapacityHeavy, capacityDev
		default:
			continue
		}

		severity := model.SeverityLow
		if math.Abs(dev) >= 1.0 {
			severity = model.SeverityMedium
		}
		if math.Abs(dev) >= 2.0 {
			severity = model.SeverityHigh
		}

		alerts = append(alerts, model.ImbalanceAlert{
			OfficerID:      o.OfficerID,
			OfficerName:    o.OfficerName,
			Classification: class,
			DeviationPct:   dev * 100,
			Severity:       severity,
			Message:        alertMessage(o, class, dev),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := model.SeverityRank(alerts[i].Severity), model.SeverityRank(alerts[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return math.Abs(alerts[i].DeviationPct) > math.Abs(alerts[j].DeviationPct)
	})
	return alerts
}

func alertMessage(o model.OfficerPortfolioSummary, class string, dev float64) string {
	switch class {
	case ClassOverloaded:
		return fmt.Sprintf("%s carries %.0f%% more weighted workload than the team average", o.OfficerName, dev*100)
	case ClassUnderutilized:
		return fmt.Sprintf("%s carries %.0f%% less weighted workload than the team average", o.OfficerName, -dev*100)
	case ClassCapacityHeavy:
		return fmt.Sprintf("%s holds %.0f%% more capacity than the team average with an ordinary portfolio size", o.OfficerName, dev*100)
	default:
		return ""
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func deviation(v, m float64) float64 {
	if m == 0 {
		return 0
	}
	return (v - m) / m
}
