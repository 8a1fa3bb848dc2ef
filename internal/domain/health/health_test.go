package health

import (
	"testing"
	"time"

	"donorpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func fullSnapshot(id string) model.ConstituentSnapshot {
	return model.ConstituentSnapshot{
		ExternalID:      id,
		FirstName:       "Grace",
		LastName:        "Hopper",
		Email:           "grace@example.com",
		Phone:           "555-123-4567",
		AddressLine1:    "1 Navy Way",
		City:            "Arlington",
		State:           "VA",
		PostalCode:      "22201",
		ConstituentType: "alumni",
	}
}

func TestScoreCompleteness(t *testing.T) {
	Convey("Given a fully populated snapshot", t, func() {
		result := ScoreCompleteness(fullSnapshot("c-1"))

		Convey("Then completeness should be perfect with no issues", func() {
			So(result.Name, ShouldEqual, "completeness")
			So(result.Score, ShouldEqual, 1.0)
			So(result.Issues, ShouldBeEmpty)
		})
	})

	Convey("Given a snapshot missing required fields", t, func() {
		result := ScoreCompleteness(model.ConstituentSnapshot{FirstName: "Solo"})

		Convey("Then high-severity missing-required issues should be raised", func() {
			missing := 0
			for _, i := range result.Issues {
				if i.Type == IssueMissingRequired {
					So(i.Severity, ShouldEqual, model.SeverityHigh)
					missing++
				}
			}
			So(missing, ShouldEqual, 2)
		})
	})

	Convey("Given a snapshot with neither email nor phone", t, func() {
		s := fullSnapshot("c-2")
		s.Email = ""
		s.Phone = ""
		result := ScoreCompleteness(s)

		Convey("Then a missing-contact issue should be raised", func() {
			So(issueTypes(result.Issues), ShouldContain, IssueMissingContact)
		})
	})

	Convey("Given a partially populated address", t, func() {
		s := fullSnapshot("c-3")
		s.City = ""
		s.State = ""
		result := ScoreCompleteness(s)

		Convey("Then an incomplete-address issue should be raised", func() {
			So(issueTypes(result.Issues), ShouldContain, IssueIncompleteAddress)
		})
	})

	Convey("Given a batch of snapshots", t, func() {
		snapshots := []model.ConstituentSnapshot{
			fullSnapshot("c-4"),
			{ExternalID: "c-5", LastName: "Bare"},
		}
		batch := ScoreCompletenessBatch(snapshots)

		Convey("Then the batch score should average the records", func() {
			So(batch.Score, ShouldBeBetween, 0, 1)
			So(batch.FieldFillRates["external_id"], ShouldEqual, 1.0)
			So(batch.FieldFillRates["email"], ShouldEqual, 0.5)
			So(batch.IssueCounts[IssueMissingContact], ShouldEqual, 1)
		})
	})

	Convey("Given an empty batch", t, func() {
		batch := ScoreCompletenessBatch(nil)

		Convey("Then the score should be zero with no issues", func() {
			So(batch.Score, ShouldEqual, 0)
			So(batch.Issues, ShouldBeEmpty)
		})
	})
}

func TestScoreConsistency(t *testing.T) {
	Convey("Given a snapshot with valid formats everywhere", t, func() {
		result := ScoreConsistency(fullSnapshot("c-1"))

		Convey("Then consistency should be perfect", func() {
			So(result.Score, ShouldEqual, 1.0)
			So(result.Issues, ShouldBeEmpty)
		})
	})

	Convey("Given malformed email and phone", t, func() {
		s := fullSnapshot("c-2")
		s.Email = "not-an-email"
		s.Phone = "12345"
		result := ScoreConsistency(s)

		Convey("Then both fields should be flagged and the score reduced", func() {
			types := issueTypes(result.Issues)
			So(types, ShouldContain, IssueInvalidEmail)
			So(types, ShouldContain, IssueInvalidPhone)
			So(result.Score, ShouldEqual, 0.5)
		})
	})

	Convey("Given accepted phone formats", t, func() {
		Convey("Then each format should validate", func() {
			So(validPhone("(555) 123-4567"), ShouldBeTrue)
			So(validPhone("555-123-4567"), ShouldBeTrue)
			So(validPhone("555.123.4567"), ShouldBeTrue)
			So(validPhone("5551234567"), ShouldBeTrue)
			So(validPhone("+1 555-123-4567"), ShouldBeTrue)
			So(validPhone("555 1234"), ShouldBeFalse)
		})
	})

	Convey("Given bad state and postal codes", t, func() {
		s := fullSnapshot("c-3")
		s.State = "Virginia"
		s.PostalCode = "ABC12"
		result := ScoreConsistency(s)

		Convey("Then both address checks should flag", func() {
			types := issueTypes(result.Issues)
			So(types, ShouldContain, IssueInvalidState)
			So(types, ShouldContain, IssueInvalidPostalCode)
		})

		Convey("And Canadian postal codes should pass", func() {
			ca := fullSnapshot("c-4")
			ca.PostalCode = "K1A 0B1"
			So(ScoreConsistency(ca).Score, ShouldEqual, 1.0)
		})
	})

	Convey("Given placeholder and malformed names", t, func() {
		placeholder := fullSnapshot("c-5")
		placeholder.FirstName = "test"
		digits := fullSnapshot("c-6")
		digits.LastName = "Sm1th"
		caps := fullSnapshot("c-7")
		caps.LastName = "HOPPER"

		Convey("Then each heuristic should flag", func() {
			So(issueTypes(ScoreConsistency(placeholder).Issues), ShouldContain, IssuePlaceholderValue)
			So(issueTypes(ScoreConsistency(digits).Issues), ShouldContain, IssueNameFormat)
			So(issueTypes(ScoreConsistency(caps).Issues), ShouldContain, IssueNameFormat)
		})
	})

	Convey("Given a batch containing duplicates", t, func() {
		a := fullSnapshot("d-1")
		b := fullSnapshot("d-2")
		b.Email = "GRACE@example.com"
		c := fullSnapshot("d-3")
		c.Email = "other@example.com"
		c.FirstName = "Ada"
		batch := ScoreConsistencyBatch([]model.ConstituentSnapshot{a, b, c})

		Convey("Then duplicate groups should be flagged once", func() {
			So(batch.IssueCounts[IssueDuplicateRecord], ShouldBeGreaterThanOrEqualTo, 1)
			So(batch.CategoryAverages["email"], ShouldEqual, 1.0)
		})
	})
}

func TestFindDuplicates(t *testing.T) {
	Convey("Given records sharing an email case-insensitively", t, func() {
		groups := FindDuplicates([]model.ConstituentSnapshot{
			{ExternalID: "a", Email: "x@y.com"},
			{ExternalID: "b", Email: "X@Y.COM"},
			{ExternalID: "c", Email: "z@y.com"},
		})

		Convey("Then one group with both IDs should be returned", func() {
			So(len(groups), ShouldEqual, 1)
			So(groups[0], ShouldResemble, []string{"a", "b"})
		})
	})

	Convey("Given records sharing a full name", t, func() {
		groups := FindDuplicates([]model.ConstituentSnapshot{
			{ExternalID: "a", FirstName: "Jo", LastName: "Ward"},
			{ExternalID: "b", FirstName: "jo", LastName: "ward"},
			{ExternalID: "c", FirstName: "Al", LastName: "Ward"},
		})

		Convey("Then the name match should group them", func() {
			So(len(groups), ShouldEqual, 1)
		})
	})

	Convey("Given the same pair matching on both email and name", t, func() {
		groups := FindDuplicates([]model.ConstituentSnapshot{
			{ExternalID: "a", FirstName: "Jo", LastName: "Ward", Email: "jo@w.com"},
			{ExternalID: "b", FirstName: "Jo", LastName: "Ward", Email: "jo@w.com"},
		})

		Convey("Then the group should be reported once", func() {
			So(len(groups), ShouldEqual, 1)
		})
	})
}

func TestScoreFreshness(t *testing.T) {
	Convey("Given fresh gift, contact and upload timestamps", t, func() {
		result := ScoreFreshness(FreshnessInput{
			LastGiftAt:    asOf.AddDate(0, 0, -10),
			LastContactAt: asOf.AddDate(0, 0, -5),
			LastUploadAt:  asOf.AddDate(0, 0, -2),
			AsOf:          asOf,
		})

		Convey("Then the score should be perfect with no issues", func() {
			So(result.Score, ShouldEqual, 1.0)
			So(result.Issues, ShouldBeEmpty)
		})
	})

	Convey("Given aging data", t, func() {
		result := ScoreFreshness(FreshnessInput{
			LastGiftAt:    asOf.AddDate(-3, 0, 0),
			LastContactAt: asOf.AddDate(0, -14, 0),
			LastUploadAt:  asOf.AddDate(0, -8, 0),
			AsOf:          asOf,
		})

		Convey("Then severities should climb with age", func() {
			bySeverity := make(map[IssueType]model.Severity)
			for _, i := range result.Issues {
				bySeverity[i.Type] = i.Severity
			}
			So(bySeverity[IssueStaleGiftData], ShouldEqual, model.SeverityHigh)
			So(bySeverity[IssueStaleContactData], ShouldEqual, model.SeverityMedium)
			So(bySeverity[IssueStaleUpload], ShouldEqual, model.SeverityLow)
			So(result.Score, ShouldBeLessThan, 0.5)
		})
	})

	Convey("Given absent timestamps", t, func() {
		result := ScoreFreshness(FreshnessInput{AsOf: asOf})

		Convey("Then each absence should be a medium issue and the score zero", func() {
			So(result.Score, ShouldEqual, 0)
			So(len(result.Issues), ShouldEqual, 3)
			for _, i := range result.Issues {
				So(i.Severity, ShouldEqual, model.SeverityMedium)
			}
		})
	})
}

func TestScoreCoverage(t *testing.T) {
	Convey("Given a well-worked database", t, func() {
		result := ScoreCoverage(CoverageInput{
			TotalConstituents: 100,
			AssignedToOfficer: 90,
			WithContactRecord: 80,
			WithGiftRecord:    95,
		})

		Convey("Then coverage should be high with no issues", func() {
			So(result.Score, ShouldBeGreaterThan, 0.8)
			So(result.Issues, ShouldBeEmpty)
		})
	})

	Convey("Given large unworked fractions", t, func() {
		result := ScoreCoverage(CoverageInput{
			TotalConstituents: 100,
			AssignedToOfficer: 50,
			WithContactRecord: 30,
			WithGiftRecord:    40,
		})

		Convey("Then each threshold breach should be flagged", func() {
			types := issueTypes(result.Issues)
			So(types, ShouldContain, IssueUnassigned)
			So(types, ShouldContain, IssueNoContactCoverage)
			So(types, ShouldContain, IssueNoGiftCoverage)
		})
	})

	Convey("Given portfolio imbalances", t, func() {
		result := ScoreCoverage(CoverageInput{
			TotalConstituents: 100,
			AssignedToOfficer: 90,
			WithContactRecord: 80,
			WithGiftRecord:    95,
			Imbalances: []model.ImbalanceDetail{
				{Metric: "constituent_count", CoefficientOfVariation: 0.8, Severity: model.SeverityMedium},
			},
		})

		Convey("Then each imbalance should fold in as an issue", func() {
			So(issueTypes(result.Issues), ShouldContain, IssueAssignmentImbalance)
		})
	})

	Convey("Given an empty database", t, func() {
		result := ScoreCoverage(CoverageInput{})

		Convey("Then the result should be empty without dividing", func() {
			So(result.Score, ShouldEqual, 0)
			So(result.Issues, ShouldBeEmpty)
		})
	})
}

func TestRecommend(t *testing.T) {
	Convey("Given issues across several types", t, func() {
		issues := []Issue{
			{Type: IssueMissingRequired},
			{Type: IssueMissingRequired},
			{Type: IssueDuplicateRecord},
			{Type: IssueInvalidPhone},
		}
		recs := Recommend(issues, 100, 0.8)

		Convey("Then one recommendation per issue type, ordered by priority", func() {
			So(len(recs), ShouldEqual, 3)
			So(recs[0].Title, ShouldContainSubstring, "required identity fields")
			for i := 1; i < len(recs); i++ {
				So(recs[i-1].Priority, ShouldBeLessThanOrEqualTo, recs[i].Priority)
			}
		})
	})

	Convey("Given address and format issues", t, func() {
		issues := []Issue{
			{Type: IssueNameFormat},
			{Type: IssueInvalidState},
			{Type: IssueInvalidPostalCode},
			{Type: IssuePartialAddress},
			{Type: IssueMissingStreet},
		}
		recs := Recommend(issues, 100, 0.8)

		Convey("Then every type should produce its own recommendation", func() {
			So(len(recs), ShouldEqual, len(issues))
			titles := make([]string, 0, len(recs))
			for _, r := range recs {
				titles = append(titles, r.Title)
			}
			So(titles, ShouldContain, "Fix name formatting")
			So(titles, ShouldContain, "Correct state codes")
			So(titles, ShouldContain, "Fix postal codes")
			So(titles, ShouldContain, "Finish partially entered addresses")
			So(titles, ShouldContain, "Add missing street lines")
		})
	})

	Convey("Given an empty database", t, func() {
		recs := Recommend(nil, 0, 0)

		Convey("Then uploading data should be the first recommendation", func() {
			So(len(recs), ShouldEqual, 1)
			So(recs[0].Title, ShouldEqual, "Upload constituent data")
		})
	})

	Convey("Given a low overall score", t, func() {
		recs := Recommend([]Issue{{Type: IssueInvalidEmail}}, 100, 0.3)

		Convey("Then a general data-quality push should be added", func() {
			titles := make([]string, 0, len(recs))
			for _, r := range recs {
				titles = append(titles, r.Title)
			}
			So(titles, ShouldContain, "Prioritize a data quality initiative")
		})
	})

	Convey("Given more issue types than the cap", t, func() {
		var issues []Issue
		for issueType := range recommendationTemplates {
			issues = append(issues, Issue{Type: issueType})
		}
		recs := Recommend(issues, 100, 0.2)

		Convey("Then the list should cap at ten", func() {
			So(len(recs), ShouldEqual, 10)
		})
	})
}

func TestBuildReport(t *testing.T) {
	Convey("Given the four category results", t, func() {
		report := BuildReport(50,
			CategoryResult{Name: "completeness", Score: 0.9, Issues: []Issue{{Type: IssueMissingContact, Severity: model.SeverityMedium}}},
			CategoryResult{Name: "freshness", Score: 0.6, Issues: []Issue{{Type: IssueStaleGiftData, Severity: model.SeverityHigh}}},
			CategoryResult{Name: "consistency", Score: 0.8, Issues: []Issue{{Type: IssueInvalidPhone, Severity: model.SeverityLow}}},
			CategoryResult{Name: "coverage", Score: 0.7},
		)

		Convey("Then the overall score should be the weighted category blend", func() {
			So(report.OverallScore, ShouldAlmostEqual, 0.9*0.30+0.8*0.30+0.6*0.20+0.7*0.20, 1e-9)
			So(report.ConstituentCount, ShouldEqual, 50)
		})

		Convey("And merged issues should sort severity descending", func() {
			So(len(report.Issues), ShouldEqual, 3)
			So(report.Issues[0].Severity, ShouldEqual, model.SeverityHigh)
			So(report.Issues[2].Severity, ShouldEqual, model.SeverityLow)
		})

		Convey("And recommendations should reflect the issues", func() {
			So(len(report.Recommendations), ShouldBeGreaterThan, 0)
		})
	})
}

func issueTypes(issues []Issue) []IssueType {
	types := make([]IssueType, 0, len(issues))
	for _, i := range issues {
		types = append(types, i.Type)
	}
	return types
}
