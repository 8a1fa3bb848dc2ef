package lapserisk

import (
	"time"

	"donorpulse/internal/domain/model"
)

// PatternScorer produces the "pattern" sub-score for the lapse risk
// composite. The default implementation is a neutral constant; a learned
// model can be substituted without touching the composition formula.
type PatternScorer interface {
	// ScorePattern returns a risk contribution in [0,1] for the given
	// history at the reference time.
	ScorePattern(gifts []model.GiftRecord, contacts []model.ContactRecord, asOf time.Time) float64
}

// neutralPatternScore is the placeholder value emitted until a learned
// signal exists.
const neutralPatternScore = 0.5

// NeutralPatternScorer is the default PatternScorer: a constant, neutral
// signal.
type NeutralPatternScorer struct{}

// ScorePattern always returns the neutral constant.
func (NeutralPatternScorer) ScorePattern([]model.GiftRecord, []model.ContactRecord, time.Time) float64 {
	return neutralPatternScore
}
