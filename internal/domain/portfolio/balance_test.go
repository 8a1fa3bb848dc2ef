package portfolio

import (
	"testing"

	"donorpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func officer(id string, count int, capacity, avgPriority float64) model.OfficerPortfolioSummary {
	return model.OfficerPortfolioSummary{
		OfficerID:        id,
		OfficerName:      id,
		ConstituentCount: count,
		TotalCapacity:    capacity,
		AvgPriorityScore: avgPriority,
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given evenly distributed portfolios", t, func() {
		analyzer := New()
		report := analyzer.Analyze([]model.OfficerPortfolioSummary{
			officer("a", 40, 400_000, 0.5),
			officer("b", 42, 420_000, 0.5),
			officer("c", 38, 380_000, 0.5),
		})

		Convey("Then the report should be balanced with no alerts", func() {
			So(report.Balanced, ShouldBeTrue)
			So(report.Imbalances, ShouldBeEmpty)
			So(report.Alerts, ShouldBeEmpty)
			So(len(report.Officers), ShouldEqual, 3)
		})
	})

	Convey("Given a heavily skewed portfolio distribution", t, func() {
		analyzer := New()
		report := analyzer.Analyze([]model.OfficerPortfolioSummary{
			officer("a", 10, 100_000, 0.5),
			officer("b", 10, 100_000, 0.5),
			officer("c", 150, 1_500_000, 0.5),
		})

		Convey("Then every metric should be imbalanced", func() {
			So(report.Balanced, ShouldBeFalse)
			So(len(report.Imbalances), ShouldEqual, 3)
			metrics := make(map[string]model.ImbalanceDetail)
			for _, im := range report.Imbalances {
				metrics[im.Metric] = im
			}
			So(metrics, ShouldContainKey, MetricConstituentCount)
			So(metrics, ShouldContainKey, MetricTotalCapacity)
			So(metrics, ShouldContainKey, MetricWeightedWorkload)
			So(metrics[MetricConstituentCount].CoefficientOfVariation, ShouldBeGreaterThan, 1.0)
			So(metrics[MetricConstituentCount].Severity, ShouldEqual, model.SeverityHigh)
		})

		Convey("And the outlier officer should be alerted as overloaded", func() {
			So(len(report.Alerts), ShouldBeGreaterThan, 0)
			So(report.Alerts[0].OfficerID, ShouldEqual, "c")
			So(report.Alerts[0].Classification, ShouldEqual, ClassOverloaded)
			So(report.Alerts[0].Severity, ShouldEqual, model.SeverityMedium)
		})
	})

	Convey("Given a moderately skewed distribution at the default threshold", t, func() {
		analyzer := New()
		report := analyzer.Analyze([]model.OfficerPortfolioSummary{
			officer("a", 10, 100_000, 0.5),
			officer("b", 10, 100_000, 0.5),
			officer("c", 50, 500_000, 0.5),
		})

		Convey("Then the size spread should be flagged at medium severity", func() {
			So(report.Balanced, ShouldBeFalse)
			var sizes *model.ImbalanceDetail
			for i := range report.Imbalances {
				if report.Imbalances[i].Metric == MetricConstituentCount {
					sizes = &report.Imbalances[i]
				}
			}
			So(sizes, ShouldNotBeNil)
			So(sizes.CoefficientOfVariation, ShouldAlmostEqual, 0.808, 0.01)
			So(sizes.Severity, ShouldEqual, model.SeverityMedium)
		})
	})

	Convey("Given fewer than two officers", t, func() {
		analyzer := New()

		Convey("Then a single officer is trivially balanced", func() {
			report := analyzer.Analyze([]model.OfficerPortfolioSummary{officer("solo", 100, 1_000_000, 0.9)})
			So(report.Balanced, ShouldBeTrue)
			So(report.Imbalances, ShouldBeEmpty)
		})

		Convey("And an empty team is trivially balanced", func() {
			report := analyzer.Analyze(nil)
			So(report.Balanced, ShouldBeTrue)
		})
	})

	Convey("Given all-zero metrics", t, func() {
		analyzer := New()
		report := analyzer.Analyze([]model.OfficerPortfolioSummary{
			officer("a", 0, 0, 0),
			officer("b", 0, 0, 0),
		})

		Convey("Then zero means should not divide and the report stays balanced", func() {
			So(report.Balanced, ShouldBeTrue)
			So(report.Alerts, ShouldBeEmpty)
		})
	})

	Convey("Given a custom CV threshold", t, func() {
		officers := []model.OfficerPortfolioSummary{
			officer("a", 10, 100_000, 0.5),
			officer("b", 10, 100_000, 0.5),
			officer("c", 50, 500_000, 0.5),
		}
		strict := New(WithCVThreshold(0.2)).Analyze(officers)
		lenient := New(WithCVThreshold(2.0)).Analyze(officers)

		Convey("Then the threshold should gate what counts as imbalanced", func() {
			So(strict.Balanced, ShouldBeFalse)
			So(lenient.Balanced, ShouldBeTrue)
		})

		Convey("And non-positive overrides should be ignored", func() {
			a := New(WithCVThreshold(0))
			So(a.cvThreshold, ShouldEqual, 0.5)
		})
	})

	Convey("Given an officer hoarding capacity with an ordinary portfolio", t, func() {
		analyzer := New()
		report := analyzer.Analyze([]model.OfficerPortfolioSummary{
			officer("a", 40, 200_000, 0.5),
			officer("b", 40, 200_000, 0.5),
			officer("c", 40, 2_000_000, 0.5),
		})

		Convey("Then the officer should be classified capacity-heavy", func() {
			So(len(report.Alerts), ShouldEqual, 1)
			So(report.Alerts[0].OfficerID, ShouldEqual, "c")
			So(report.Alerts[0].Classification, ShouldEqual, ClassCapacityHeavy)
		})
	})

	Convey("Given an underutilized officer", t, func() {
		analyzer := New()
		report := analyzer.Analyze([]model.OfficerPortfolioSummary{
			officer("a", 100, 500_000, 0.6),
			officer("b", 100, 500_000, 0.6),
			officer("c", 10, 500_000, 0.6),
		})

		Convey("Then the light portfolio should be flagged underutilized", func() {
			var found *model.ImbalanceAlert
			for i := range report.Alerts {
				if report.Alerts[i].OfficerID == "c" {
					found = &report.Alerts[i]
				}
			}
			So(found, ShouldNotBeNil)
			So(found.Classification, ShouldEqual, ClassUnderutilized)
			So(found.DeviationPct, ShouldBeLessThan, 0)
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given value sets", t, func() {
		Convey("Then mean and population standard deviation should compute", func() {
			So(mean([]float64{2, 4, 6}), ShouldEqual, 4)
			So(mean(nil), ShouldEqual, 0)
			So(stdDev([]float64{2, 4, 6}, 4), ShouldAlmostEqual, 1.632993, 1e-5)
			So(stdDev(nil, 0), ShouldEqual, 0)
		})

		Convey("And deviation should guard a zero mean", func() {
			So(deviation(5, 0), ShouldEqual, 0)
			So(deviation(15, 10), ShouldAlmostEqual, 0.5, 1e-9)
		})
	})
}
