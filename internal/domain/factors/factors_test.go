package factors

import (
	"testing"
	"time"

	"donorpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func gift(amount float64, monthsAgo int) model.GiftRecord {
	return model.GiftRecord{Amount: amount, Date: asOf.AddDate(0, -monthsAgo, 0)}
}

func contact(t model.ContactType, outcome model.ContactOutcome, monthsAgo int) model.ContactRecord {
	return model.ContactRecord{Type: t, Outcome: outcome, Date: asOf.AddDate(0, -monthsAgo, 0)}
}

func TestCalculateRecency(t *testing.T) {
	Convey("Given a constituent with no gifts", t, func() {
		result := CalculateRecency(nil, asOf)

		Convey("Then recency risk should be maximal", func() {
			So(result.Score, ShouldEqual, 1.0)
			So(result.Description, ShouldContainSubstring, "no giving history")
		})
	})

	Convey("Given a gift made today", t, func() {
		result := CalculateRecency([]model.GiftRecord{{Amount: 100, Date: asOf}}, asOf)

		Convey("Then recency risk should be zero", func() {
			So(result.Score, ShouldEqual, 0)
			So(result.DaysSinceLastGift, ShouldEqual, 0)
		})
	})

	Convey("Given gifts at the curve breakpoints", t, func() {
		Convey("Then the score should climb monotonically with the gap", func() {
			previous := -1.0
			for _, monthsAgo := range []int{1, 6, 12, 18, 24, 36, 48, 72} {
				result := CalculateRecency([]model.GiftRecord{gift(100, monthsAgo)}, asOf)
				So(result.Score, ShouldBeGreaterThan, previous)
				So(result.Score, ShouldBeBetweenOrEqual, 0, 1)
				previous = result.Score
			}
		})

		Convey("And a roughly 12-month gap should land near the mid band", func() {
			result := CalculateRecency([]model.GiftRecord{gift(100, 12)}, asOf)
			So(result.Score, ShouldAlmostEqual, 0.40, 0.02)
		})

		Convey("And a 6-year gap should saturate at 1.0", func() {
			result := CalculateRecency([]model.GiftRecord{gift(100, 72)}, asOf)
			So(result.Score, ShouldEqual, 1.0)
		})
	})

	Convey("Given multiple gifts", t, func() {
		gifts := []model.GiftRecord{gift(100, 30), gift(200, 3), gift(50, 18)}
		result := CalculateRecency(gifts, asOf)

		Convey("Then only the most recent gift should matter", func() {
			single := CalculateRecency([]model.GiftRecord{gift(200, 3)}, asOf)
			So(result.Score, ShouldEqual, single.Score)
		})
	})
}

func TestCalculateFrequency(t *testing.T) {
	Convey("Given a constituent with no gifts", t, func() {
		result := CalculateFrequency(nil, asOf)

		Convey("Then frequency risk should be maximal with a stable trend", func() {
			So(result.Score, ShouldEqual, 1.0)
			So(result.Trend, ShouldEqual, TrendStable)
		})
	})

	Convey("Given a single gift", t, func() {
		result := CalculateFrequency([]model.GiftRecord{gift(100, 3)}, asOf)

		Convey("Then cadence is unknown and the score is the fixed mid-high value", func() {
			So(result.Score, ShouldEqual, 0.6)
			So(result.Trend, ShouldEqual, TrendStable)
			So(result.Description, ShouldContainSubstring, "cadence unknown")
		})

		Convey("And a gift inside the default recent window counts as recent", func() {
			So(result.RecentCount, ShouldEqual, 1)
		})
	})

	Convey("Given a single gift older than the recent window", t, func() {
		result := CalculateFrequency([]model.GiftRecord{gift(100, 30)}, asOf)

		Convey("Then the score holds but nothing counts as recent", func() {
			So(result.Score, ShouldEqual, 0.6)
			So(result.RecentCount, ShouldEqual, 0)
		})
	})

	Convey("Given a steady annual giver over five years", t, func() {
		gifts := []model.GiftRecord{
			gift(100, 6), gift(100, 18), gift(100, 30), gift(100, 42), gift(100, 54),
		}
		result := CalculateFrequency(gifts, asOf)

		Convey("Then the trend should be stable with low-to-moderate risk", func() {
			So(result.Trend, ShouldEqual, TrendStable)
			So(result.Score, ShouldBeLessThan, 0.5)
			So(result.RecentCount, ShouldEqual, 2)
			So(result.HistoricalCount, ShouldEqual, 3)
		})
	})

	Convey("Given a donor whose giving stopped", t, func() {
		gifts := []model.GiftRecord{
			gift(100, 30), gift(100, 36), gift(100, 42), gift(100, 48), gift(100, 54),
		}
		result := CalculateFrequency(gifts, asOf)

		Convey("Then the trend should be stopped with elevated risk", func() {
			So(result.Trend, ShouldEqual, TrendStopped)
			So(result.Score, ShouldEqual, 1.0)
		})
	})

	Convey("Given a donor whose cadence is accelerating", t, func() {
		gifts := []model.GiftRecord{
			gift(100, 2), gift(100, 6), gift(100, 10), gift(100, 14), gift(100, 20),
			gift(100, 36), gift(100, 50),
		}
		result := CalculateFrequency(gifts, asOf)

		Convey("Then the trend should be increasing and the risk discounted", func() {
			So(result.Trend, ShouldEqual, TrendIncreasing)
			So(result.Score, ShouldBeLessThan, 0.3)
		})
	})

	Convey("Given a custom recent window", t, func() {
		gifts := []model.GiftRecord{
			gift(100, 6), gift(100, 18), gift(100, 30), gift(100, 42),
		}
		narrow := CalculateFrequency(gifts, asOf, WithRecentWindowYears(1))

		Convey("Then the window option should change the recent count", func() {
			So(narrow.RecentCount, ShouldEqual, 1)
		})
	})
}

func TestCalculateMonetary(t *testing.T) {
	Convey("Given a constituent with no gifts", t, func() {
		result := CalculateMonetary(nil, asOf)

		Convey("Then monetary risk should be the no-gift baseline", func() {
			So(result.Score, ShouldEqual, 0.8)
			So(result.LifetimeTotal, ShouldEqual, 0)
		})
	})

	Convey("Given giving retained at historical levels", t, func() {
		gifts := []model.GiftRecord{
			gift(1000, 6), gift(1000, 18), gift(1000, 30), gift(1000, 42), gift(1000, 54),
		}
		result := CalculateMonetary(gifts, asOf)

		Convey("Then the score should stay in the retained band", func() {
			So(result.Trend, ShouldEqual, TrendStable)
			So(result.Score, ShouldBeLessThanOrEqualTo, 0.3)
			So(result.LifetimeTotal, ShouldEqual, 5000)
		})
	})

	Convey("Given amounts that collapsed against the baseline", t, func() {
		gifts := []model.GiftRecord{
			gift(100, 6), gift(5000, 30), gift(5000, 42), gift(5000, 54),
		}
		result := CalculateMonetary(gifts, asOf)

		Convey("Then the trend should be decreasing with elevated risk", func() {
			So(result.Trend, ShouldEqual, TrendDecreasing)
			So(result.Score, ShouldBeGreaterThan, 0.6)
		})
	})

	Convey("Given a donor with no recent giving", t, func() {
		gifts := []model.GiftRecord{gift(2000, 30), gift(2000, 42)}
		result := CalculateMonetary(gifts, asOf)

		Convey("Then the trend should be stopped", func() {
			So(result.Trend, ShouldEqual, TrendStopped)
			So(result.Score, ShouldBeGreaterThan, 0.7)
		})
	})

	Convey("Given a major donor with stopped giving", t, func() {
		gifts := []model.GiftRecord{gift(80_000, 30), gift(60_000, 42)}
		result := CalculateMonetary(gifts, asOf)
		smaller := CalculateMonetary([]model.GiftRecord{gift(2000, 30), gift(2000, 42)}, asOf)

		Convey("Then lifetime giving above the major threshold should dampen the score", func() {
			So(result.LifetimeTotal, ShouldEqual, 140_000)
			So(result.Score, ShouldBeLessThan, smaller.Score)
		})
	})

	Convey("Given a brand-new donor with only recent gifts", t, func() {
		gifts := []model.GiftRecord{gift(500, 3), gift(500, 9)}
		result := CalculateMonetary(gifts, asOf)

		Convey("Then the absent baseline should not penalize them", func() {
			So(result.Score, ShouldBeLessThan, 0.3)
		})
	})
}

func TestCalculateContact(t *testing.T) {
	Convey("Given a constituent with no contact history", t, func() {
		result := CalculateContact(nil, asOf)

		Convey("Then the score should be the no-contact baseline", func() {
			So(result.Score, ShouldEqual, 0.75)
		})
	})

	Convey("Given frequent recent personal contact with positive outcomes", t, func() {
		contacts := []model.ContactRecord{
			contact(model.ContactMeeting, model.OutcomePositive, 1),
			contact(model.ContactCall, model.OutcomePositive, 3),
			contact(model.ContactVisit, model.OutcomeNeutral, 5),
			contact(model.ContactEmail, model.OutcomeNeutral, 7),
		}
		result := CalculateContact(contacts, asOf)

		Convey("Then risk should be low with positive outcomes flagged", func() {
			So(result.Score, ShouldBeLessThan, 0.3)
			So(result.HasPositiveOutcome, ShouldBeTrue)
			So(result.WeightedRecentContacts, ShouldBeGreaterThan, 2.0)
		})
	})

	Convey("Given a long gap since the last contact", t, func() {
		contacts := []model.ContactRecord{
			contact(model.ContactCall, model.OutcomeNeutral, 20),
		}
		result := CalculateContact(contacts, asOf)

		Convey("Then risk should be high", func() {
			So(result.Score, ShouldBeGreaterThan, 0.7)
			So(result.HasPositiveOutcome, ShouldBeFalse)
		})
	})

	Convey("Given negative and unanswered outreach", t, func() {
		base := []model.ContactRecord{
			contact(model.ContactCall, model.OutcomeNeutral, 4),
			contact(model.ContactCall, model.OutcomeNeutral, 8),
		}
		sour := []model.ContactRecord{
			contact(model.ContactCall, model.OutcomeNegative, 4),
			contact(model.ContactCall, model.OutcomeNoResponse, 8),
		}
		baseResult := CalculateContact(base, asOf)
		sourResult := CalculateContact(sour, asOf)

		Convey("Then bad outcomes should raise the score", func() {
			So(sourResult.Score, ShouldBeGreaterThan, baseResult.Score)
		})
	})

	Convey("Given a custom contact-type weight table", t, func() {
		contacts := []model.ContactRecord{
			contact(model.ContactEmail, model.OutcomeNeutral, 2),
			contact(model.ContactEmail, model.OutcomeNeutral, 4),
		}
		boosted := CalculateContact(contacts, asOf, WithContactTypeWeights(map[model.ContactType]float64{
			model.ContactEmail: 1.5,
		}))
		standard := CalculateContact(contacts, asOf)

		Convey("Then heavier weights should count more toward frequency", func() {
			So(boosted.WeightedRecentContacts, ShouldBeGreaterThan, standard.WeightedRecentContacts)
		})
	})
}

func TestClassifyTrend(t *testing.T) {
	Convey("Given recent and historical rates", t, func() {
		Convey("Then the ratio bands should classify correctly", func() {
			So(classifyTrend(1.2, 1.0), ShouldEqual, TrendIncreasing)
			So(classifyTrend(1.0, 1.0), ShouldEqual, TrendStable)
			So(classifyTrend(0.8, 1.0), ShouldEqual, TrendStable)
			So(classifyTrend(0.5, 1.0), ShouldEqual, TrendDecreasing)
			So(classifyTrend(0, 1.0), ShouldEqual, TrendStopped)
		})

		Convey("And a zero baseline should never divide", func() {
			So(classifyTrend(2.0, 0), ShouldEqual, TrendIncreasing)
			So(classifyTrend(0, 0), ShouldEqual, TrendStable)
		})
	})
}
