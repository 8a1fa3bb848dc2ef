package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	app "donorpulse/internal/app"
	"donorpulse/internal/config"
	"donorpulse/internal/domain/lapserisk"
	"donorpulse/internal/domain/model"
	"donorpulse/internal/domain/priority"
	"donorpulse/internal/sampledata"
	"donorpulse/pkg/logger"
)

// Default run constants.
const (
	defaultConstituents = 500
	defaultSeed         = 42
)

// runSummary is the JSON report written to stdout.
type runSummary struct {
	AsOf            time.Time           `json:"as_of"`
	Constituents    int                 `json:"constituents"`
	HighRisk        int                 `json:"high_risk"`
	MediumRisk      int                 `json:"medium_risk"`
	LowRisk         int                 `json:"low_risk"`
	AnomaliesByType map[string]int      `json:"anomalies_by_type"`
	DataHealthScore float64             `json:"data_health_score"`
	TopPriorities   []prioritySummary   `json:"top_priorities"`
	Imbalances      []imbalancesSummary `json:"portfolio_imbalances"`
}

type prioritySummary struct {
	ConstituentID string  `json:"constituent_id"`
	Score         float64 `json:"score"`
	LapseRisk     float64 `json:"lapse_risk"`
	Window        string  `json:"predicted_lapse_window"`
}

type imbalancesSummary struct {
	Metric                 string  `json:"metric"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Severity               string  `json:"severity"`
}

func main() {
	var (
		count = flag.Int("constituents", defaultConstituents, "Number of sample constituents to score")
		seed  = flag.Int64("seed", defaultSeed, "Deterministic sample data seed")
		asOf  = flag.String("as-of", "", "Scoring reference time in RFC3339 (default: now, UTC)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	referenceTime := time.Now().UTC()
	if *asOf != "" {
		parsed, err := time.Parse(time.RFC3339, *asOf)
		if err != nil {
			os.Stderr.WriteString("invalid -as-of value: " + err.Error() + "\n")
			return
		}
		referenceTime = parsed.UTC()
	}

	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.BatchQueueSize),
		app.WithLapseWeights(lapseWeightsFromConfig(cfg)),
		app.WithPriorityWeights(priorityWeightsFromConfig(cfg)),
		app.WithCVThreshold(cfg.CVThreshold),
		app.WithLookbackYears(cfg.LookbackYears),
		app.WithRecentWindowYears(cfg.RecentWindowYears),
	)

	constituents := sampledata.New(*seed, referenceTime).Constituents(*count)
	loggerInstance.Info(ctx, "generated sample constituents", logger.Int("count", len(constituents)))

	timing := priority.TimingContext{
		FiscalYearEnd: time.Date(referenceTime.Year(), 6, 30, 0, 0, 0, 0, time.UTC),
	}

	scores, err := svc.ScoreBatch(ctx, constituents, timing, referenceTime)
	if err != nil {
		loggerInstance.Error(ctx, "batch scoring failed", logger.Error(err))
		return
	}

	summary := summarize(referenceTime, scores)

	// Portfolio balance across officers.
	officers := officerSummaries(constituents, scores)
	balance := svc.BalanceReport(ctx, officers)
	for _, im := range balance.Imbalances {
		summary.Imbalances = append(summary.Imbalances, imbalancesSummary{
			Metric:                 im.Metric,
			CoefficientOfVariation: im.CoefficientOfVariation,
			Severity:               string(im.Severity),
		})
	}

	// Database health, with portfolio imbalances folded into coverage.
	healthReport := svc.HealthReport(ctx, constituents, referenceTime, balance.Imbalances, referenceTime)
	summary.DataHealthScore = healthReport.OverallScore

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		loggerInstance.Error(ctx, "failed to write summary", logger.Error(err))
	}
}

// summarize rolls batch scores into the run summary.
func summarize(asOf time.Time, scores []app.Scores) runSummary {
	summary := runSummary{
		AsOf:            asOf,
		Constituents:    len(scores),
		AnomaliesByType: make(map[string]int),
	}

	top := make([]app.Scores, 0, len(scores))
	for _, s := range scores {
		switch s.LapseRisk.RiskLevel {
		case model.RiskHigh:
			summary.HighRisk++
		case model.RiskMedium:
			summary.MediumRisk++
		default:
			summary.LowRisk++
		}
		for _, a := range s.Anomalies {
			summary.AnomaliesByType[string(a.Type)]++
		}
		top = append(top, s)
	}

	// Highest-priority constituents first.
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Priority.Score > top[j].Priority.Score
	})
	limit := 10
	if len(top) < limit {
		limit = len(top)
	}
	for _, s := range top[:limit] {
		summary.TopPriorities = append(summary.TopPriorities, prioritySummary{
			ConstituentID: s.ConstituentID,
			Score:         s.Priority.Score,
			LapseRisk:     s.LapseRisk.Score,
			Window:        s.LapseRisk.PredictedLapseWindow,
		})
	}
	return summary
}

// officerSummaries groups scored constituents into per-officer portfolio
// aggregates.
func officerSummaries(constituents []app.Constituent, scores []app.Scores) []model.OfficerPortfolioSummary {
	type agg struct {
		count    int
		capacity float64
		priority []float64
	}
	byOfficer := make(map[string]*agg)
	for i, c := range constituents {
		if c.OfficerID == "" {
			continue
		}
		a := byOfficer[c.OfficerID]
		if a == nil {
			a = &agg{}
			byOfficer[c.OfficerID] = a
		}
		a.count++
		a.capacity += c.EstimatedCapacity
		if i < len(scores) {
			a.priority = append(a.priority, scores[i].Priority.Score)
		}
	}

	summaries := make([]model.OfficerPortfolioSummary, 0, len(byOfficer))
	for id, a := range byOfficer {
		summaries = append(summaries, priority.SummarizeOfficer(id, id, a.priority, a.capacity))
	}
	// Map iteration order would otherwise leak into the report.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].OfficerID < summaries[j].OfficerID
	})
	return summaries
}

func lapseWeightsFromConfig(cfg *config.Config) lapserisk.Weights {
	w := lapserisk.DefaultWeights()
	if v, ok := cfg.LapseWeights["recency"]; ok {
		w.Recency = v
	}
	if v, ok := cfg.LapseWeights["frequency"]; ok {
		w.Frequency = v
	}
	if v, ok := cfg.LapseWeights["monetary"]; ok {
		w.Monetary = v
	}
	if v, ok := cfg.LapseWeights["contact"]; ok {
		w.Contact = v
	}
	if v, ok := cfg.LapseWeights["pattern"]; ok {
		w.Pattern = v
	}
	return w
}

func priorityWeightsFromConfig(cfg *config.Config) priority.Weights {
	w := priority.DefaultWeights()
	if v, ok := cfg.PriorityWeights["capacity"]; ok {
		w.Capacity = v
	}
	if v, ok := cfg.PriorityWeights["lapse_urgency"]; ok {
		w.Urgency = v
	}
	if v, ok := cfg.PriorityWeights["timing"]; ok {
		w.Timing = v
	}
	if v, ok := cfg.PriorityWeights["engagement"]; ok {
		w.Engagement = v
	}
	return w
}
