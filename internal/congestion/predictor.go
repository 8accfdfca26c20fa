package congestion

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/pkg/geo"
)

// Time-of-day scoring parameters. Hours are local to the prediction timestamp.
const (
	baseScore          = 0.3
	morningPeakBoost   = 0.4
	eveningPeakBoost   = 0.5
	weekendLeisureBump = 0.3
	maxScore           = 0.95

	morningPeakStart = 7
	morningPeakEnd   = 9
	eveningPeakStart = 17
	eveningPeakEnd   = 19
	leisureStart     = 11
	leisureEnd       = 18

	// Local variation is bounded to [0, localVariationSpan).
	localVariationSpan = 0.2

	confidenceFloor = 0.85
	confidenceSpan  = 0.10

	highThreshold   = 0.7
	mediumThreshold = 0.4
)

// PredictorConfig holds configuration for the congestion predictor.
type PredictorConfig struct {
	// Logger for predictor operations.
	Logger zerolog.Logger

	// Random supplies the bounded local-variation and confidence terms.
	// Defaults to the coordinate-seeded source.
	Random RandomSource
}

// Predictor estimates congestion for a location at a point in time.
// Predictions are pure functions of the inputs and the injected RandomSource.
type Predictor struct {
	logger zerolog.Logger
	random RandomSource
}

// NewPredictor creates a new congestion predictor.
func NewPredictor(cfg PredictorConfig) *Predictor {
	random := cfg.Random
	if random == nil {
		random = SeededRandom()
	}
	return &Predictor{
		logger: cfg.Logger,
		random: random,
	}
}

// Predict estimates congestion at loc for time t.
func (p *Predictor) Predict(t time.Time, loc geo.Point) (Sample, error) {
	if err := loc.Validate(); err != nil {
		return Sample{}, err
	}

	score, factors := p.patternScore(t)

	variation := p.random.Draw(t, loc, "local-variation") * localVariationSpan
	if variation > 0 {
		score += variation
		factors = append(factors, "local_variation")
	}
	if score > maxScore {
		score = maxScore
	}

	confidence := confidenceFloor + p.random.Draw(t, loc, "confidence")*confidenceSpan

	clearIn := time.Duration(math.Ceil(score*30)) * time.Minute

	return Sample{
		Location:           loc,
		PredictedAt:        t,
		Level:              levelFor(score),
		Score:              score,
		Confidence:         confidence,
		PredictedClearTime: t.Add(clearIn),
		Factors:            factors,
	}, nil
}

// patternScore computes the deterministic time-of-day component.
func (p *Predictor) patternScore(t time.Time) (float64, []string) {
	score := baseScore
	factors := []string{"baseline"}

	hour := t.Hour()
	switch {
	case hour >= morningPeakStart && hour <= morningPeakEnd:
		score += morningPeakBoost
		factors = append(factors, "morning_peak")
	case hour >= eveningPeakStart && hour <= eveningPeakEnd:
		score += eveningPeakBoost
		factors = append(factors, "evening_peak")
	}

	weekday := t.Weekday()
	if (weekday == time.Saturday || weekday == time.Sunday) &&
		hour >= leisureStart && hour <= leisureEnd {
		score += weekendLeisureBump
		factors = append(factors, "weekend_leisure")
	}

	return score, factors
}

// levelFor classifies a score. The morning-peak deterministic score lands
// exactly on the high threshold, so the boundary is inclusive.
func levelFor(score float64) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score > mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// IsPeakHour reports whether the hour falls in a morning or evening peak window.
func IsPeakHour(t time.Time) bool {
	hour := t.Hour()
	return (hour >= morningPeakStart && hour <= morningPeakEnd) ||
		(hour >= eveningPeakStart && hour <= eveningPeakEnd)
}
