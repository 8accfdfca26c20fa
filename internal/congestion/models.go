// Package congestion estimates road congestion from time-of-day and day-of-week
// patterns plus a bounded, reproducible local-variation term.
package congestion

import (
	"time"

	"github.com/greenwave/greenwave/pkg/geo"
)

// Level classifies a congestion score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Ordinal returns a numeric encoding of the level for trend arithmetic.
func (l Level) Ordinal() float64 {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// Sample is a single congestion estimate for a location at a point in time.
// Samples are produced fresh per prediction call and never persisted.
type Sample struct {
	Location           geo.Point
	PredictedAt        time.Time
	Level              Level
	Score              float64 // [0, 1]
	Confidence         float64 // [0, 1]
	PredictedClearTime time.Time
	Factors            []string
}

// Trend describes how congestion evolves across a forecast window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// Forecast is a series of samples over a look-ahead window with coarse
// first-versus-last trend classification.
type Forecast struct {
	Samples  []Sample
	Trend    Trend
	PeakTime time.Time
}
