// Package sampledata generates realistic constituent datasets for demos and
// load testing. Generation is fully deterministic for a given seed and as-of
// time, so repeated runs produce identical datasets.
package sampledata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	service "donorpulse/internal/app"
	"donorpulse/internal/domain/model"
)

// Profile names a giving behavior archetype.
type Profile string

// Giving behavior profiles.
const (
	ProfileConsistentMajor      Profile = "consistent_major"
	ProfileConsistentLeadership Profile = "consistent_leadership"
	ProfileConsistentAnnual     Profile = "consistent_annual"
	ProfileUpgrading            Profile = "upgrading"
	ProfileDowngrading          Profile = "downgrading"
	ProfileLybunt               Profile = "lybunt" // gave last year but not this
	ProfileSybunt               Profile = "sybunt" // gave some year but not last
	ProfileNewDonor             Profile = "new_donor"
	ProfileSporadic             Profile = "sporadic"
	ProfileOneTime              Profile = "one_time"
	ProfileNever                Profile = "never"
)

// profileWeights drives the population mix. Values are relative weights.
var profileWeights = []struct {
	profile Profile
	weight  int
}{
	{ProfileConsistentMajor, 3},
	{ProfileConsistentLeadership, 7},
	{ProfileConsistentAnnual, 20},
	{ProfileUpgrading, 8},
	{ProfileDowngrading, 8},
	{ProfileLybunt, 12},
	{ProfileSybunt, 10},
	{ProfileNewDonor, 10},
	{ProfileSporadic, 10},
	{ProfileOneTime, 7},
	{ProfileNever, 5},
}

// Annual gift bands by profile family.
const (
	majorGiftMin      = 10_000.0
	majorGiftMax      = 100_000.0
	leadershipGiftMin = 1_000.0
	leadershipGiftMax = 10_000.0
	annualGiftMin     = 50.0
	annualGiftMax     = 1_000.0
)

// Capacity estimation parameters.
const (
	capacityMultiplierMin = 8.0
	capacityMultiplierMax = 25.0
	capacityKnownRate     = 0.7
)

// Portfolio tier bands over the capacity estimate, with an annual-giving
// fallback when no estimate exists.
const (
	tierMajorCapacity      = 100_000.0
	tierPrincipalCapacity  = 25_000.0
	tierLeadershipCapacity = 10_000.0

	tierMajorAnnual      = 10_000.0
	tierPrincipalAnnual  = 2_500.0
	tierLeadershipAnnual = 1_000.0
)

// Contact cadence in months by capacity band.
const (
	cadenceMajorMonths      = 2.0
	cadenceLeadershipMonths = 4.0
	cadenceRegularMonths    = 8.0
)

// Fraction of records deliberately degraded to exercise data health checks.
const defaultDegradedRate = 0.08

// idNamespace seeds deterministic v5 UUIDs for external IDs.
var idNamespace = uuid.MustParse("f3b5c9a1-7d42-4f8e-9b6a-2c1d8e0f4a73")

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Carol", "Daniel", "Nancy",
	"Maria", "Kevin", "Lisa", "Brian", "Sandra", "Angela", "Paul", "Helen",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Thompson", "White", "Harris", "Clark", "Lewis", "Walker", "Hall",
}

var cities = []struct{ city, state, postal string }{
	{"Boston", "MA", "02108"},
	{"Cambridge", "MA", "02139"},
	{"Providence", "RI", "02903"},
	{"Hartford", "CT", "06103"},
	{"Portland", "ME", "04101"},
	{"Albany", "NY", "12207"},
	{"Burlington", "VT", "05401"},
	{"Concord", "NH", "03301"},
}

var officerIDs = []string{"off-001", "off-002", "off-003", "off-004", "off-005"}

// Generator produces deterministic constituent datasets.
type Generator struct {
	rng          *rand.Rand
	asOf         time.Time
	degradedRate float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithDegradedRate sets the fraction of records with injected data quality
// problems.
func WithDegradedRate(rate float64) Option {
	return func(g *Generator) {
		if rate >= 0 && rate <= 1 {
			g.degradedRate = rate
		}
	}
}

// New creates a Generator. The same seed and asOf always yield the same
// dataset.
func New(seed int64, asOf time.Time, opts ...Option) *Generator {
	g := &Generator{
		rng:          rand.New(rand.NewSource(seed)),
		asOf:         asOf,
		degradedRate: defaultDegradedRate,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Constituents generates n constituents with profile-driven gift and contact
// histories.
func (g *Generator) Constituents(n int) []service.Constituent {
	out := make([]service.Constituent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.constituent(i))
	}
	return out
}

func (g *Generator) constituent(index int) service.Constituent {
	profile := g.pickProfile()
	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	loc := cities[g.rng.Intn(len(cities))]

	externalID := uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("constituent-%d", index))).String()

	snapshot := model.ConstituentSnapshot{
		ExternalID:      externalID,
		FirstName:       first,
		LastName:        last,
		Email:           strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, index)),
		Phone:           fmt.Sprintf("(%03d) %03d-%04d", 200+g.rng.Intn(700), 200+g.rng.Intn(700), g.rng.Intn(10000)),
		AddressLine1:    fmt.Sprintf("%d Main St", 1+g.rng.Intn(999)),
		City:            loc.city,
		State:           loc.state,
		PostalCode:      loc.postal,
		ConstituentType: "individual",
	}

	base := g.baseAmount(profile)
	gifts := g.gifts(profile, base)
	capacity, capacityKnown := g.capacity(base, profile)
	contacts := g.contacts(gifts, capacity, capacityKnown)

	if g.rng.Float64() < g.degradedRate {
		g.degrade(&snapshot)
	}

	officerID := ""
	if g.rng.Float64() < 0.8 {
		officerID = officerIDs[g.rng.Intn(len(officerIDs))]
	}

	return service.Constituent{
		Snapshot:          snapshot,
		Gifts:             gifts,
		Contacts:          contacts,
		EstimatedCapacity: capacity,
		CapacityKnown:     capacityKnown,
		PortfolioTier:     portfolioTier(capacity, capacityKnown, base),
		OfficerID:         officerID,
	}
}

// portfolioTier classifies a constituent by capacity when an estimate
// exists, otherwise by base annual giving.
func portfolioTier(capacity float64, known bool, base float64) model.PortfolioTier {
	if known {
		switch {
		case capacity >= tierMajorCapacity:
			return model.TierMajor
		case capacity >= tierPrincipalCapacity:
			return model.TierPrincipal
		case capacity >= tierLeadershipCapacity:
			return model.TierLeadership
		default:
			return model.TierRegular
		}
	}
	switch {
	case base >= tierMajorAnnual:
		return model.TierMajor
	case base >= tierPrincipalAnnual:
		return model.TierPrincipal
	case base >= tierLeadershipAnnual:
		return model.TierLeadership
	default:
		return model.TierRegular
	}
}

func (g *Generator) pickProfile() Profile {
	total := 0
	for _, pw := range profileWeights {
		total += pw.weight
	}
	n := g.rng.Intn(total)
	for _, pw := range profileWeights {
		n -= pw.weight
		if n < 0 {
			return pw.profile
		}
	}
	return ProfileConsistentAnnual
}

func (g *Generator) baseAmount(p Profile) float64 {
	switch p {
	case ProfileConsistentMajor:
		return g.between(majorGiftMin, majorGiftMax)
	case ProfileConsistentLeadership, ProfileUpgrading, ProfileDowngrading:
		return g.between(leadershipGiftMin, leadershipGiftMax)
	default:
		return g.between(annualGiftMin, annualGiftMax)
	}
}

// gifts builds a gift history matching the profile's shape.
func (g *Generator) gifts(p Profile, base float64) []model.GiftRecord {
	switch p {
	case ProfileConsistentMajor, ProfileConsistentLeadership, ProfileConsistentAnnual:
		years := 5 + g.rng.Intn(6)
		return g.annualSeries(years, 0, base, 1.0)
	case ProfileUpgrading:
		years := 4 + g.rng.Intn(3)
		return g.annualSeries(years, 0, base, 1.25)
	case ProfileDowngrading:
		years := 4 + g.rng.Intn(3)
		return g.annualSeries(years, 0, base, 0.75)
	case ProfileLybunt:
		years := 3 + g.rng.Intn(5)
		// Last gift 13-23 months ago.
		return g.annualSeries(years, 13+g.rng.Intn(11), base, 1.0)
	case ProfileSybunt:
		years := 2 + g.rng.Intn(4)
		// Last gift 25-48 months ago.
		return g.annualSeries(years, 25+g.rng.Intn(24), base, 1.0)
	case ProfileNewDonor:
		count := 1 + g.rng.Intn(2)
		gifts := make([]model.GiftRecord, 0, count)
		for i := 0; i < count; i++ {
			gifts = append(gifts, model.GiftRecord{
				Amount: g.jitter(base),
				Date:   g.asOf.AddDate(0, 0, -(g.rng.Intn(330) + 14)),
			})
		}
		return gifts
	case ProfileSporadic:
		count := 2 + g.rng.Intn(5)
		gifts := make([]model.GiftRecord, 0, count)
		for i := 0; i < count; i++ {
			gifts = append(gifts, model.GiftRecord{
				Amount: g.jitter(base),
				Date:   g.asOf.AddDate(0, 0, -(g.rng.Intn(365*6) + 30)),
			})
		}
		return gifts
	case ProfileOneTime:
		return []model.GiftRecord{{
			Amount: g.jitter(base),
			Date:   g.asOf.AddDate(0, 0, -(g.rng.Intn(365*3) + 365)),
		}}
	default: // ProfileNever
		return nil
	}
}

// annualSeries builds one gift per year ending lastGiftMonthsAgo back from
// the as-of date, with amounts trending by the given per-year ratio.
func (g *Generator) annualSeries(years, lastGiftMonthsAgo int, base, trend float64) []model.GiftRecord {
	gifts := make([]model.GiftRecord, 0, years)
	amount := base
	// Walk backwards from the most recent gift.
	for y := 0; y < years; y++ {
		monthsBack := lastGiftMonthsAgo + y*12 + g.rng.Intn(3)
		gifts = append(gifts, model.GiftRecord{
			Amount: g.jitter(amount),
			Date:   g.asOf.AddDate(0, -monthsBack, -g.rng.Intn(28)),
		})
		amount /= trend
	}
	return gifts
}

func (g *Generator) capacity(base float64, p Profile) (float64, bool) {
	if p == ProfileNever {
		if g.rng.Float64() < 0.2 {
			return g.between(10_000, 250_000), true
		}
		return 0, false
	}
	if g.rng.Float64() >= capacityKnownRate {
		return 0, false
	}
	return base * g.between(capacityMultiplierMin, capacityMultiplierMax), true
}

// contacts builds a contact history whose cadence follows capacity.
func (g *Generator) contacts(gifts []model.GiftRecord, capacity float64, capacityKnown bool) []model.ContactRecord {
	cadence := cadenceRegularMonths
	if capacityKnown {
		switch {
		case capacity >= 100_000:
			cadence = cadenceMajorMonths
		case capacity >= 10_000:
			cadence = cadenceLeadershipMonths
		}
	}
	if len(gifts) == 0 && !capacityKnown {
		return nil
	}

	types := []model.ContactType{
		model.ContactMeeting, model.ContactCall, model.ContactEmail,
		model.ContactEvent, model.ContactLetter,
	}
	outcomes := []model.ContactOutcome{
		model.OutcomePositive, model.OutcomePositive, model.OutcomeNeutral,
		model.OutcomeNeutral, model.OutcomeNoResponse,
	}

	var contacts []model.ContactRecord
	monthsBack := g.between(0.5, cadence)
	for monthsBack < 36 {
		contacts = append(contacts, model.ContactRecord{
			Type:    types[g.rng.Intn(len(types))],
			Outcome: outcomes[g.rng.Intn(len(outcomes))],
			Date:    g.asOf.AddDate(0, 0, -int(monthsBack*30.44)),
		})
		monthsBack += g.between(cadence*0.6, cadence*1.4)
	}
	return contacts
}

// degrade injects a data quality problem into the snapshot.
func (g *Generator) degrade(s *model.ConstituentSnapshot) {
	switch g.rng.Intn(5) {
	case 0:
		s.Email = ""
		s.Phone = ""
	case 1:
		s.Email = "not-an-email"
	case 2:
		s.FirstName = "test"
	case 3:
		s.City = ""
		s.PostalCode = ""
	default:
		s.Phone = "12345"
	}
}

func (g *Generator) between(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// jitter varies an amount by up to +/-20%.
func (g *Generator) jitter(amount float64) float64 {
	return amount * g.between(0.8, 1.2)
}
