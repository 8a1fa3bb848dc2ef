package health

import "sort"

// Recommendation is an actionable next step derived from observed issues.
type Recommendation struct {
	Priority    int // 1 is most urgent
	Title       string
	Description string
	Action      string
	Impact      string
}

const maxRecommendations = 10

// Overall score below which a general data-quality push is recommended.
const generalRecThreshold = 0.5

// recommendationTemplates maps issue types to their remediation advice.
var recommendationTemplates = map[IssueType]Recommendation{
	IssueMissingRequired: {
		Priority:    1,
		Title:       "Fill in required identity fields",
		Description: "Some records are missing external IDs or last names, which blocks matching and reporting.",
		Action:      "Export the flagged records and backfill external_id and last_name from your source system.",
		Impact:      "Restores reliable record matching and unblocks downstream scoring.",
	},
	IssueDuplicateRecord: {
		Priority:    2,
		Title:       "Merge duplicate records",
		Description: "Multiple records share the same email or name, splitting giving history across them.",
		Action:      "Review the duplicate groups and merge them in your source system before the next upload.",
		Impact:      "Consolidates giving history so lapse and priority scores see the full picture.",
	},
	IssueMissingContact: {
		Priority:    3,
		Title:       "Capture contact information",
		Description: "Records with neither email nor phone cannot be reached by any channel.",
		Action:      "Run an append service or survey campaign to collect emails and phone numbers.",
		Impact:      "Makes unreachable donors contactable and improves engagement scoring.",
	},
	IssueStaleGiftData: {
		Priority:    4,
		Title:       "Upload recent gift data",
		Description: "Gift history has not been refreshed recently, so scores reflect an outdated picture.",
		Action:      "Schedule a recurring export of gift transactions from your database of record.",
		Impact:      "Keeps lapse risk and anomaly detection current.",
	},
	IssueStaleContactData: {
		Priority:    4,
		Title:       "Log recent contact activity",
		Description: "Contact records are stale; officer activity may not be getting recorded.",
		Action:      "Remind officers to log meetings and calls, or sync from your CRM activity feed.",
		Impact:      "Improves contact-factor accuracy and surfaces real contact gaps.",
	},
	IssueStaleUpload: {
		Priority:    5,
		Title:       "Refresh the data upload",
		Description: "The last data upload is aging; scores drift as reality moves on.",
		Action:      "Establish a regular upload cadence, monthly at minimum.",
		Impact:      "Keeps every score anchored to current data.",
	},
	IssueUnassigned: {
		Priority:    5,
		Title:       "Assign constituents to officers",
		Description: "A large share of the database has no portfolio assignment.",
		Action:      "Review unassigned constituents and route qualified prospects to officer portfolios.",
		Impact:      "Brings unmanaged prospects under active stewardship.",
	},
	IssueInvalidEmail: {
		Priority:    6,
		Title:       "Correct invalid email addresses",
		Description: "Some email values do not parse as addresses and will bounce.",
		Action:      "Validate and correct the flagged emails, or clear values that are not emails.",
		Impact:      "Reduces bounce rates and keeps contact-info quality signals honest.",
	},
	IssueInvalidPhone: {
		Priority:    7,
		Title:       "Normalize phone numbers",
		Description: "Some phone values do not match a recognized format.",
		Action:      "Reformat phones to a standard layout during import.",
		Impact:      "Improves call-list reliability.",
	},
	IssueAssignmentImbalance: {
		Priority:    6,
		Title:       "Rebalance officer portfolios",
		Description: "Portfolio sizes or capacity are distributed unevenly across officers.",
		Action:      "Review the balance report and move constituents between portfolios.",
		Impact:      "Evens workload and ensures high-capacity donors get attention.",
	},
	IssueNoContactCoverage: {
		Priority:    7,
		Title:       "Expand contact history coverage",
		Description: "Most constituents have no recorded contact, limiting engagement signals.",
		Action:      "Import historical touchpoints or begin logging outreach consistently.",
		Impact:      "Gives the contact factor real data to work with.",
	},
	IssueNoGiftCoverage: {
		Priority:    8,
		Title:       "Import full gift history",
		Description: "Many constituents have no gift records at all.",
		Action:      "Backfill gift transactions for all constituents, not just recent donors.",
		Impact:      "Enables lifetime-giving context across the database.",
	},
	IssueNameFormat: {
		Priority:    8,
		Title:       "Fix name formatting",
		Description: "Some names contain digits or are written in all capitals.",
		Action:      "Normalize casing and strip stray characters from name fields during import.",
		Impact:      "Keeps salutations and acknowledgment letters presentable.",
	},
	IssueInvalidState: {
		Priority:    9,
		Title:       "Correct state codes",
		Description: "Some state values are not recognized two-letter codes.",
		Action:      "Map state names and typos to standard postal abbreviations.",
		Impact:      "Improves mail deliverability and regional reporting.",
	},
	IssueInvalidPostalCode: {
		Priority:    9,
		Title:       "Fix postal codes",
		Description: "Some postal codes do not match a recognized US or Canadian format.",
		Action:      "Validate postal codes against the address on file and correct mismatches.",
		Impact:      "Improves mail deliverability and wealth-screening match rates.",
	},
	IssuePartialAddress: {
		Priority:    9,
		Title:       "Finish partially entered addresses",
		Description: "Some records have a street line but are missing city, state or postal code.",
		Action:      "Backfill the missing address components from your source system.",
		Impact:      "Makes flagged records mailable again.",
	},
	IssueMissingStreet: {
		Priority:    9,
		Title:       "Add missing street lines",
		Description: "Some records carry city and state but no street address.",
		Action:      "Collect street addresses through an append service or donor outreach.",
		Impact:      "Completes the mailing address for otherwise located records.",
	},
	IssuePlaceholderValue: {
		Priority:    8,
		Title:       "Remove placeholder values",
		Description: "Name fields contain values like test or n/a.",
		Action:      "Clean placeholder values from name fields in the source system.",
		Impact:      "Prevents junk records from polluting reports.",
	},
	IssueIncompleteAddress: {
		Priority:    9,
		Title:       "Complete partial addresses",
		Description: "Some addresses are only partially populated.",
		Action:      "Run an address verification service against the flagged records.",
		Impact:      "Improves mail deliverability and wealth-screening match rates.",
	},
}

// Recommend turns a merged issue list into a prioritized, deduplicated set
// of recommendations, capped at the top ten.
func Recommend(issues []Issue, constituentCount int, overallScore float64) []Recommendation {
	var recs []Recommendation

	if constituentCount == 0 {
		recs = append(recs, Recommendation{
			Priority:    1,
			Title:       "Upload constituent data",
			Description: "No constituent records have been uploaded yet.",
			Action:      "Export constituents, gifts and contacts from your source system and upload them.",
			Impact:      "Enables every score and report.",
		})
	}

	seen := make(map[IssueType]bool)
	for _, issue := range issues {
		if seen[issue.Type] {
			continue
		}
		seen[issue.Type] = true
		if tmpl, ok := recommendationTemplates[issue.Type]; ok {
			recs = append(recs, tmpl)
		}
	}

	if constituentCount > 0 && overallScore < generalRecThreshold {
		recs = append(recs, Recommendation{
			Priority:    2,
			Title:       "Prioritize a data quality initiative",
			Description: "Overall data health is low enough to undermine score reliability.",
			Action:      "Dedicate time to the highest-priority items above before acting on scores.",
			Impact:      "Raises confidence across all analytics.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
