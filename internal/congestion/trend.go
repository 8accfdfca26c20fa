package congestion

import (
	"errors"
	"time"

	"github.com/greenwave/greenwave/pkg/geo"
)

// ErrEmptyWindow indicates a forecast was requested over zero steps.
var ErrEmptyWindow = errors.New("forecast window must contain at least one step")

// trendDelta is the ordinal-level difference beyond which a window is
// classified as improving or worsening. The first-versus-last comparison is a
// deliberately coarse heuristic, not a regression.
const trendDelta = 0.5

// ForecastWindow predicts congestion at loc for a series of future instants,
// starting at from and advancing by step, and classifies the overall trend.
func (p *Predictor) ForecastWindow(from time.Time, loc geo.Point, steps int, step time.Duration) (Forecast, error) {
	if steps <= 0 {
		return Forecast{}, ErrEmptyWindow
	}

	samples := make([]Sample, 0, steps)
	for i := 0; i < steps; i++ {
		sample, err := p.Predict(from.Add(time.Duration(i)*step), loc)
		if err != nil {
			return Forecast{}, err
		}
		samples = append(samples, sample)
	}

	return Forecast{
		Samples:  samples,
		Trend:    overallTrend(samples),
		PeakTime: peakTime(samples),
	}, nil
}

// overallTrend compares only the first and last samples of the series.
func overallTrend(samples []Sample) Trend {
	if len(samples) < 2 {
		return TrendStable
	}
	delta := samples[len(samples)-1].Level.Ordinal() - samples[0].Level.Ordinal()
	switch {
	case delta > trendDelta:
		return TrendWorsening
	case delta < -trendDelta:
		return TrendImproving
	default:
		return TrendStable
	}
}

// peakTime returns the prediction instant of the highest-scoring sample.
func peakTime(samples []Sample) time.Time {
	peak := samples[0]
	for _, s := range samples[1:] {
		if s.Score > peak.Score {
			peak = s
		}
	}
	return peak.PredictedAt
}
