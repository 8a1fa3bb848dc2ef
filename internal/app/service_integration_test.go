package service_test

import (
	"context"
	"testing"
	"time"

	service "donorpulse/internal/app"
	"donorpulse/internal/domain/model"
	"donorpulse/internal/domain/priority"
	"donorpulse/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service scoring a generated portfolio end-to-end", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		constituents := sampledata.New(42, asOf).Constituents(200)
		timing := priority.TimingContext{
			FiscalYearEnd: time.Date(asOf.Year(), 6, 30, 0, 0, 0, 0, time.UTC),
		}

		Convey("When scoring the full batch", func() {
			scores, err := svc.ScoreBatch(ctx, constituents, timing, asOf)

			Convey("Then every constituent should be scored, in order", func() {
				So(err, ShouldBeNil)
				So(len(scores), ShouldEqual, len(constituents))
				for i, s := range scores {
					So(s.ConstituentID, ShouldEqual, constituents[i].Snapshot.ExternalID)
					So(s.LapseRisk.Score, ShouldBeBetweenOrEqual, 0, 1)
					So(s.Priority.Score, ShouldBeBetweenOrEqual, 0, 1)
					So(s.Confidence.Score, ShouldBeBetweenOrEqual, 0, 1)
				}
			})

			Convey("And the mix of profiles should span all risk levels", func() {
				So(err, ShouldBeNil)
				levels := make(map[model.RiskLevel]int)
				for _, s := range scores {
					levels[s.LapseRisk.RiskLevel]++
				}
				So(levels[model.RiskHigh], ShouldBeGreaterThan, 0)
				So(levels[model.RiskLow], ShouldBeGreaterThan, 0)
			})

			Convey("And a second run should produce identical scores", func() {
				So(err, ShouldBeNil)
				again, err2 := svc.ScoreBatch(ctx, constituents, timing, asOf)
				So(err2, ShouldBeNil)
				So(len(again), ShouldEqual, len(scores))
				for i := range scores {
					So(again[i].LapseRisk.Score, ShouldEqual, scores[i].LapseRisk.Score)
					So(again[i].Priority.Score, ShouldEqual, scores[i].Priority.Score)
				}
			})
		})

		Convey("When running anomaly detection across the portfolio", func() {
			found := svc.DetectAnomalies(ctx, constituents, asOf)

			Convey("Then flagged constituents should carry at least one anomaly", func() {
				for _, f := range found {
					So(f.ConstituentID, ShouldNotBeEmpty)
					So(len(f.Anomalies), ShouldBeGreaterThan, 0)
				}
			})
		})

		Convey("When chaining balance and health reports off the batch", func() {
			scores, err := svc.ScoreBatch(ctx, constituents, timing, asOf)
			So(err, ShouldBeNil)

			byOfficer := make(map[string]*officerAgg)
			for i, c := range constituents {
				if c.OfficerID == "" {
					continue
				}
				a := byOfficer[c.OfficerID]
				if a == nil {
					a = &officerAgg{}
					byOfficer[c.OfficerID] = a
				}
				a.count++
				a.capacity += c.EstimatedCapacity
				a.priority = append(a.priority, scores[i].Priority.Score)
			}
			officers := make([]model.OfficerPortfolioSummary, 0, len(byOfficer))
			for id, a := range byOfficer {
				officers = append(officers, priority.SummarizeOfficer(id, id, a.priority, a.capacity))
			}

			balance := svc.BalanceReport(ctx, officers)
			report := svc.HealthReport(ctx, constituents, asOf, balance.Imbalances, asOf)

			Convey("Then the health report should cover the whole database", func() {
				So(report.ConstituentCount, ShouldEqual, len(constituents))
				So(report.OverallScore, ShouldBeBetweenOrEqual, 0, 1)
				So(report.Completeness.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(report.Coverage.Score, ShouldBeBetweenOrEqual, 0, 1)
			})
		})
	})
}

type officerAgg struct {
	count    int
	capacity float64
	priority []float64
}
