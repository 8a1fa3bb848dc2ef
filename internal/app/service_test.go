package service_test

import (
	"context"
	"testing"
	"time"

	service "donorpulse/internal/app"
	"donorpulse/internal/domain/lapserisk"
	"donorpulse/internal/domain/model"
	"donorpulse/internal/domain/priority"
	"donorpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var testAsOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testConstituent(id string) service.Constituent {
	return service.Constituent{
		Snapshot: model.ConstituentSnapshot{
			ExternalID: id,
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Email:      "ada@example.com",
		},
		Gifts: []model.GiftRecord{
			{Amount: 500, Date: testAsOf.AddDate(-2, 0, 0)},
			{Amount: 600, Date: testAsOf.AddDate(-1, 0, 0)},
			{Amount: 700, Date: testAsOf.AddDate(0, -3, 0)},
		},
		Contacts: []model.ContactRecord{
			{Type: model.ContactCall, Outcome: model.OutcomePositive, Date: testAsOf.AddDate(0, -2, 0)},
		},
		EstimatedCapacity: 50_000,
		CapacityKnown:     true,
		OfficerID:         "off-001",
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithCVThreshold(0.6),
			service.WithLookbackYears(7),
			service.WithRecentWindowYears(3),
			service.WithLapseWeights(lapserisk.DefaultWeights()),
			service.WithPriorityWeights(priority.DefaultWeights()),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_ScoreConstituent(t *testing.T) {
	Convey("Given a service and a constituent with history", t, func() {
		svc := service.New()
		ctx := context.Background()
		c := testConstituent("c-1")

		Convey("When scoring the constituent", func() {
			scores, err := svc.ScoreConstituent(ctx, c, priority.TimingContext{}, testAsOf)

			Convey("Then every score should be in range with explanations", func() {
				So(err, ShouldBeNil)
				So(scores.ConstituentID, ShouldEqual, "c-1")
				So(scores.LapseRisk.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(scores.Priority.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(scores.Confidence.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(len(scores.LapseRisk.Factors), ShouldBeGreaterThan, 0)
				So(len(scores.Priority.Factors), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When scoring the same constituent twice", func() {
			first, err1 := svc.ScoreConstituent(ctx, c, priority.TimingContext{}, testAsOf)
			second, err2 := svc.ScoreConstituent(ctx, c, priority.TimingContext{}, testAsOf)

			Convey("Then the results should be identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.LapseRisk.Score, ShouldEqual, second.LapseRisk.Score)
				So(first.Priority.Score, ShouldEqual, second.Priority.Score)
				So(first.Confidence.Score, ShouldEqual, second.Confidence.Score)
			})
		})
	})
}

func TestService_ScoreBatch(t *testing.T) {
	Convey("Given a service and several constituents", t, func() {
		svc := service.New(service.WithWorkerCount(4))
		ctx := context.Background()

		constituents := []service.Constituent{
			testConstituent("c-1"),
			testConstituent("c-2"),
			testConstituent("c-3"),
			{Snapshot: model.ConstituentSnapshot{ExternalID: "c-4", LastName: "Empty"}},
		}

		Convey("When scoring the batch", func() {
			results, err := svc.ScoreBatch(ctx, constituents, priority.TimingContext{}, testAsOf)

			Convey("Then results should come back in input order", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 4)
				So(results[0].ConstituentID, ShouldEqual, "c-1")
				So(results[1].ConstituentID, ShouldEqual, "c-2")
				So(results[2].ConstituentID, ShouldEqual, "c-3")
				So(results[3].ConstituentID, ShouldEqual, "c-4")
			})

			Convey("And a constituent with no history should get the empty-history defaults", func() {
				So(err, ShouldBeNil)
				So(results[3].LapseRisk.Score, ShouldBeGreaterThan, 0.7)
				So(results[3].Confidence.Level, ShouldEqual, model.ConfidenceVeryLow)
			})
		})

		Convey("When two records share an external ID with different capacity data", func() {
			low := testConstituent("dup")
			low.EstimatedCapacity = 0
			low.CapacityKnown = false
			high := testConstituent("dup")
			high.EstimatedCapacity = 1_000_000

			results, err := svc.ScoreBatch(ctx, []service.Constituent{low, high}, priority.TimingContext{}, testAsOf)

			Convey("Then each record should be scored with its own data", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)

				lowDirect, _ := svc.ScoreConstituent(ctx, low, priority.TimingContext{}, testAsOf)
				highDirect, _ := svc.ScoreConstituent(ctx, high, priority.TimingContext{}, testAsOf)
				So(results[0].Priority.Score, ShouldEqual, lowDirect.Priority.Score)
				So(results[1].Priority.Score, ShouldEqual, highDirect.Priority.Score)
				So(results[0].Priority.Score, ShouldNotEqual, results[1].Priority.Score)
			})
		})

		Convey("When scoring an empty batch", func() {
			results, err := svc.ScoreBatch(ctx, nil, priority.TimingContext{}, testAsOf)

			Convey("Then it should return no results and no error", func() {
				So(err, ShouldBeNil)
				So(results, ShouldBeEmpty)
			})
		})
	})
}

func TestService_HealthReport(t *testing.T) {
	Convey("Given a service and a small database", t, func() {
		svc := service.New()
		ctx := context.Background()

		constituents := []service.Constituent{
			testConstituent("c-1"),
			{Snapshot: model.ConstituentSnapshot{ExternalID: "c-2"}}, // missing last name, no contact info
		}

		Convey("When generating a health report", func() {
			report := svc.HealthReport(ctx, constituents, testAsOf.AddDate(0, -1, 0), nil, testAsOf)

			Convey("Then the overall score should be in range with issues listed", func() {
				So(report.OverallScore, ShouldBeBetweenOrEqual, 0, 1)
				So(report.ConstituentCount, ShouldEqual, 2)
				So(len(report.Issues), ShouldBeGreaterThan, 0)
				So(len(report.Recommendations), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When generating a report for an empty database", func() {
			report := svc.HealthReport(ctx, nil, time.Time{}, nil, testAsOf)

			Convey("Then it should recommend uploading data", func() {
				So(report.ConstituentCount, ShouldEqual, 0)
				So(len(report.Recommendations), ShouldBeGreaterThan, 0)
				So(report.Recommendations[0].Title, ShouldContainSubstring, "Upload")
			})
		})
	})
}

func TestService_BalanceReport(t *testing.T) {
	Convey("Given a service and officer portfolios", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When portfolios are badly skewed", func() {
			officers := []model.OfficerPortfolioSummary{
				{OfficerID: "a", OfficerName: "A", ConstituentCount: 10, TotalCapacity: 100_000, AvgPriorityScore: 0.5},
				{OfficerID: "b", OfficerName: "B", ConstituentCount: 10, TotalCapacity: 100_000, AvgPriorityScore: 0.5},
				{OfficerID: "c", OfficerName: "C", ConstituentCount: 50, TotalCapacity: 500_000, AvgPriorityScore: 0.5},
			}

			report := svc.BalanceReport(ctx, officers)

			Convey("Then the report should flag the imbalance", func() {
				So(report.Balanced, ShouldBeFalse)
				So(len(report.Imbalances), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When there is only one officer", func() {
			officers := []model.OfficerPortfolioSummary{
				{OfficerID: "a", OfficerName: "A", ConstituentCount: 10},
			}

			report := svc.BalanceReport(ctx, officers)

			Convey("Then the report should be balanced", func() {
				So(report.Balanced, ShouldBeTrue)
				So(report.Imbalances, ShouldBeEmpty)
			})
		})
	})
}
