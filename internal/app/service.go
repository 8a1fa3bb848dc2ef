// Package service wires the scoring engines together behind one facade.
// All operations are deterministic: callers supply every input, including
// the as-of time, and identical inputs always produce identical outputs.
package service

import (
	"context"
	"strings"
	"time"

	"donorpulse/internal/batch"
	"donorpulse/internal/domain/anomaly"
	"donorpulse/internal/domain/confidence"
	"donorpulse/internal/domain/factors"
	"donorpulse/internal/domain/health"
	"donorpulse/internal/domain/lapserisk"
	"donorpulse/internal/domain/model"
	"donorpulse/internal/domain/portfolio"
	"donorpulse/internal/domain/priority"
	"donorpulse/pkg/logger"
	"donorpulse/pkg/metrics"
)

// Constituent bundles everything known about one donor.
type Constituent struct {
	Snapshot          model.ConstituentSnapshot
	Gifts             []model.GiftRecord
	Contacts          []model.ContactRecord
	EstimatedCapacity float64
	CapacityKnown     bool
	PortfolioTier     model.PortfolioTier
	OfficerID         string
}

// Scores is the full scoring output for one constituent.
type Scores struct {
	ConstituentID string
	LapseRisk     lapserisk.Result
	Priority      priority.Result
	Confidence    confidence.Result
	Anomalies     []model.AnomalyResult
}

// Service orchestrates the domain engines.
type Service struct {
	lapse     *lapserisk.Engine
	priority  *priority.Engine
	portfolio *portfolio.Analyzer

	workerCount int
	queueSize   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	workerCount       int
	queueSize         int
	lapseWeights      *lapserisk.Weights
	priorityWeights   *priority.Weights
	cvThreshold       float64
	lookbackYears     float64
	recentWindowYears float64
	logger            logger.Logger
}

// WithWorkerCount sets the number of batch scoring workers.
func WithWorkerCount(count int) Option {
	return func(c *serviceConfig) {
		if count > 0 {
			c.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the batch scoring queue.
func WithQueueSize(size int) Option {
	return func(c *serviceConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithLapseWeights overrides the lapse risk factor weights.
func WithLapseWeights(w lapserisk.Weights) Option {
	return func(c *serviceConfig) {
		c.lapseWeights = &w
	}
}

// WithPriorityWeights overrides the priority factor weights.
func WithPriorityWeights(w priority.Weights) Option {
	return func(c *serviceConfig) {
		c.priorityWeights = &w
	}
}

// WithCVThreshold overrides the portfolio balance threshold.
func WithCVThreshold(t float64) Option {
	return func(c *serviceConfig) {
		if t > 0 {
			c.cvThreshold = t
		}
	}
}

// WithLookbackYears bounds how far back giving history is considered.
func WithLookbackYears(years float64) Option {
	return func(c *serviceConfig) {
		if years > 0 {
			c.lookbackYears = years
		}
	}
}

// WithRecentWindowYears sets the trailing window treated as recent.
func WithRecentWindowYears(years float64) Option {
	return func(c *serviceConfig) {
		if years > 0 {
			c.recentWindowYears = years
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(c *serviceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	cfg := serviceConfig{
		workerCount: 0, // batch pool derives from CPU count
		queueSize:   10_000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var factorOpts []factors.Option
	if cfg.lookbackYears > 0 {
		factorOpts = append(factorOpts, factors.WithLookbackYears(cfg.lookbackYears))
	}
	if cfg.recentWindowYears > 0 {
		factorOpts = append(factorOpts, factors.WithRecentWindowYears(cfg.recentWindowYears))
	}

	var lapseOpts []lapserisk.Option
	if cfg.lapseWeights != nil {
		lapseOpts = append(lapseOpts, lapserisk.WithWeights(*cfg.lapseWeights))
	}
	if len(factorOpts) > 0 {
		lapseOpts = append(lapseOpts, lapserisk.WithFactorOptions(factorOpts...))
	}

	var priorityOpts []priority.Option
	if cfg.priorityWeights != nil {
		priorityOpts = append(priorityOpts, priority.WithWeights(*cfg.priorityWeights))
	}

	var balanceOpts []portfolio.Option
	if cfg.cvThreshold > 0 {
		balanceOpts = append(balanceOpts, portfolio.WithCVThreshold(cfg.cvThreshold))
	}

	lg := cfg.logger
	if lg == nil {
		lg = logger.Get().Named("service")
	}

	return &Service{
		lapse:       lapserisk.New(lapseOpts...),
		priority:    priority.New(priorityOpts...),
		portfolio:   portfolio.New(balanceOpts...),
		workerCount: cfg.workerCount,
		queueSize:   cfg.queueSize,
		logger:      lg,
	}
}

// ScoreConstituent computes lapse risk, priority, confidence and anomalies
// for one constituent as of the given time.
func (s *Service) ScoreConstituent(ctx context.Context, c Constituent, timing priority.TimingContext, asOf time.Time) (Scores, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	}()

	id := c.Snapshot.ExternalID

	lapse := s.lapse.Score(lapserisk.Input{
		ConstituentID: id,
		Gifts:         c.Gifts,
		Contacts:      c.Contacts,
		AsOf:          asOf,
	})

	prio := s.priority.Score(priority.Input{
		ConstituentID:         id,
		Capacity:              c.EstimatedCapacity,
		CapacityKnown:         c.CapacityKnown,
		LapseRiskScore:        lapse.Score,
		Timing:                timing,
		Gifts:                 c.Gifts,
		Contacts:              c.Contacts,
		RequiredFieldsPresent: requiredFieldsPresent(c.Snapshot),
		ContactInfoPresent:    contactInfoPresent(c.Snapshot),
		AsOf:                  asOf,
	})

	conf := confidence.Score(confidenceSignals(c, asOf))

	anomalies := anomaly.Detect(anomaly.Input{
		ConstituentID:     id,
		Gifts:             c.Gifts,
		Contacts:          c.Contacts,
		PortfolioTier:     c.PortfolioTier,
		EstimatedCapacity: c.EstimatedCapacity,
		CapacityKnown:     c.CapacityKnown,
		AsOf:              asOf,
	})
	for _, a := range anomalies {
		metrics.RecordAnomalyDetected(string(a.Type))
	}

	metrics.RecordConstituentScored()

	return Scores{
		ConstituentID: id,
		LapseRisk:     lapse,
		Priority:      prio,
		Confidence:    conf,
		Anomalies:     anomalies,
	}, nil
}

// ScoreBatch scores many constituents through the worker pool, returning
// results in input order.
func (s *Service) ScoreBatch(ctx context.Context, constituents []Constituent, timing priority.TimingContext, asOf time.Time) ([]Scores, error) {
	jobs := make([]batch.Job, len(constituents))
	for i, c := range constituents {
		jobs[i] = batch.Job{
			ConstituentID:     c.Snapshot.ExternalID,
			Snapshot:          c.Snapshot,
			Gifts:             c.Gifts,
			Contacts:          c.Contacts,
			EstimatedCapacity: c.EstimatedCapacity,
			CapacityKnown:     c.CapacityKnown,
			PortfolioTier:     c.PortfolioTier,
			AsOf:              asOf,
		}
	}

	scorer := batch.ScorerFunc(func(ctx context.Context, job batch.Job) (any, error) {
		return s.ScoreConstituent(ctx, Constituent{
			Snapshot:          job.Snapshot,
			Gifts:             job.Gifts,
			Contacts:          job.Contacts,
			EstimatedCapacity: job.EstimatedCapacity,
			CapacityKnown:     job.CapacityKnown,
			PortfolioTier:     job.PortfolioTier,
		}, timing, job.AsOf)
	})

	outcomes, err := batch.Process(ctx, scorer, jobs, batch.WithWorkerCount(s.workerCount))
	if err != nil {
		return nil, err
	}

	results := make([]Scores, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			s.logger.Warn(ctx, "constituent scoring failed",
				logger.String("constituent_id", o.ConstituentID),
				logger.Error(o.Err),
			)
			results[i] = Scores{ConstituentID: o.ConstituentID}
			continue
		}
		if scores, ok := o.Payload.(Scores); ok {
			results[i] = scores
		}
	}
	return results, nil
}

// DetectAnomalies runs the anomaly detectors over many constituents and
// returns only those with at least one anomaly, in input order.
func (s *Service) DetectAnomalies(ctx context.Context, constituents []Constituent, asOf time.Time) []anomaly.ConstituentAnomalies {
	inputs := make([]anomaly.Input, len(constituents))
	for i, c := range constituents {
		inputs[i] = anomaly.Input{
			ConstituentID:     c.Snapshot.ExternalID,
			Gifts:             c.Gifts,
			Contacts:          c.Contacts,
			PortfolioTier:     c.PortfolioTier,
			EstimatedCapacity: c.EstimatedCapacity,
			CapacityKnown:     c.CapacityKnown,
			AsOf:              asOf,
		}
	}
	found := anomaly.DetectBatch(inputs)
	for _, ca := range found {
		for _, a := range ca.Anomalies {
			metrics.RecordAnomalyDetected(string(a.Type))
		}
	}
	return found
}

// HealthReport assesses database quality across all constituents. The
// lastUploadAt timestamp feeds the freshness category; imbalances from a
// balance report may be folded into coverage and can be nil.
func (s *Service) HealthReport(ctx context.Context, constituents []Constituent, lastUploadAt time.Time, imbalances []model.ImbalanceDetail, asOf time.Time) health.Report {
	snapshots := make([]model.ConstituentSnapshot, len(constituents))
	var lastGift, lastContact time.Time
	assigned, withContacts, withGifts := 0, 0, 0
	for i, c := range constituents {
		snapshots[i] = c.Snapshot
		if c.OfficerID != "" {
			assigned++
		}
		if len(c.Contacts) > 0 {
			withContacts++
		}
		if len(c.Gifts) > 0 {
			withGifts++
		}
		for _, g := range c.Gifts {
			if g.Date.After(lastGift) {
				lastGift = g.Date
			}
		}
		for _, ct := range c.Contacts {
			if ct.Date.After(lastContact) {
				lastContact = ct.Date
			}
		}
	}

	completeness := health.ScoreCompletenessBatch(snapshots)
	consistency := health.ScoreConsistencyBatch(snapshots)
	freshness := health.ScoreFreshness(health.FreshnessInput{
		LastGiftAt:    lastGift,
		LastContactAt: lastContact,
		LastUploadAt:  lastUploadAt,
		AsOf:          asOf,
	})
	coverage := health.ScoreCoverage(health.CoverageInput{
		TotalConstituents: len(constituents),
		AssignedToOfficer: assigned,
		WithContactRecord: withContacts,
		WithGiftRecord:    withGifts,
		Imbalances:        imbalances,
	})

	report := health.BuildReport(len(constituents), completeness.CategoryResult, freshness, consistency.CategoryResult, coverage)
	metrics.RecordHealthReport()
	s.logger.Info(ctx, "health report generated",
		logger.Int("constituents", len(constituents)),
		logger.Float64("overall_score", report.OverallScore),
	)
	return report
}

// BalanceReport analyzes workload distribution across officer portfolios.
func (s *Service) BalanceReport(ctx context.Context, officers []model.OfficerPortfolioSummary) portfolio.Report {
	report := s.portfolio.Analyze(officers)
	metrics.RecordBalanceReport()
	s.logger.Info(ctx, "balance report generated",
		logger.Int("officers", len(officers)),
		logger.Int("imbalanced_metrics", len(report.Imbalances)),
	)
	return report
}

// confidenceSignals derives the confidence inputs from raw history.
func confidenceSignals(c Constituent, asOf time.Time) confidence.Signals {
	sig := confidence.Signals{
		GiftCount:             len(c.Gifts),
		ContactCount:          len(c.Contacts),
		DaysSinceLastGift:     -1,
		DaysSinceLastContact:  -1,
		RequiredFieldsPresent: requiredFieldsPresent(c.Snapshot),
		ContactInfoPresent:    contactInfoPresent(c.Snapshot),
	}

	var earliest, latest time.Time
	for _, g := range c.Gifts {
		if earliest.IsZero() || g.Date.Before(earliest) {
			earliest = g.Date
		}
		if g.Date.After(latest) {
			latest = g.Date
		}
	}
	if !latest.IsZero() {
		sig.DaysSinceLastGift = int(asOf.Sub(latest).Hours() / 24)
	}

	var latestContact time.Time
	for _, ct := range c.Contacts {
		if earliest.IsZero() || ct.Date.Before(earliest) {
			earliest = ct.Date
		}
		if ct.Date.After(latestContact) {
			latestContact = ct.Date
		}
	}
	if !latestContact.IsZero() {
		sig.DaysSinceLastContact = int(asOf.Sub(latestContact).Hours() / 24)
	}

	if !earliest.IsZero() {
		sig.DataSpanYears = asOf.Sub(earliest).Hours() / 24 / 365.25
	}

	return sig
}

func requiredFieldsPresent(s model.ConstituentSnapshot) bool {
	return strings.TrimSpace(s.ExternalID) != "" && strings.TrimSpace(s.LastName) != ""
}

func contactInfoPresent(s model.ConstituentSnapshot) bool {
	return strings.TrimSpace(s.Email) != "" || strings.TrimSpace(s.Phone) != ""
}
