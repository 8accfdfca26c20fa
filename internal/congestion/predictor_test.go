package congestion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

var amsterdam = geo.Point{Lat: 52.3676, Lng: 4.9041}

// at builds a local timestamp on a fixed Tuesday (2026-03-10).
func at(hour int) time.Time {
	return time.Date(2026, time.March, 10, hour, 0, 0, 0, time.UTC)
}

func newPredictor(random congestion.RandomSource) *congestion.Predictor {
	return congestion.NewPredictor(congestion.PredictorConfig{Random: random})
}

func TestPredict_MorningPeakIsHigh(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	sample, err := p.Predict(at(8), amsterdam)
	require.NoError(t, err)

	// Deterministic component alone: 0.3 baseline + 0.4 morning peak.
	assert.InDelta(t, 0.7, sample.Score, 1e-9)
	assert.Equal(t, congestion.LevelHigh, sample.Level)
	assert.Contains(t, sample.Factors, "morning_peak")
}

func TestPredict_EveningPeakIsHigh(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	sample, err := p.Predict(at(18), amsterdam)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, sample.Score, 1e-9)
	assert.Equal(t, congestion.LevelHigh, sample.Level)
	assert.Contains(t, sample.Factors, "evening_peak")
}

func TestPredict_OffPeakIsLow(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	sample, err := p.Predict(at(3), amsterdam)
	require.NoError(t, err)

	assert.InDelta(t, 0.3, sample.Score, 1e-9)
	assert.Equal(t, congestion.LevelLow, sample.Level)
}

func TestPredict_WeekendLeisureBump(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	// Saturday 14:00: baseline 0.3 + leisure 0.3.
	saturday := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)
	sample, err := p.Predict(saturday, amsterdam)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, sample.Score, 1e-9)
	assert.Equal(t, congestion.LevelMedium, sample.Level)
	assert.Contains(t, sample.Factors, "weekend_leisure")
}

func TestPredict_ScoreClampedAtCeiling(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0.999))

	// Evening peak 0.8 + near-maximal variation would exceed the ceiling.
	sample, err := p.Predict(at(18), amsterdam)
	require.NoError(t, err)

	assert.LessOrEqual(t, sample.Score, 0.95)
	assert.Equal(t, congestion.LevelHigh, sample.Level)
}

func TestPredict_ClearTimeNeverBeforePrediction(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0.5))

	for hour := 0; hour < 24; hour++ {
		sample, err := p.Predict(at(hour), amsterdam)
		require.NoError(t, err)
		assert.False(t, sample.PredictedClearTime.Before(sample.PredictedAt),
			"clear time before prediction at hour %d", hour)
	}
}

func TestPredict_ConfidenceBand(t *testing.T) {
	for _, v := range []float64{0, 0.5, 0.999} {
		sample, err := newPredictor(congestion.FixedRandom(v)).Predict(at(10), amsterdam)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sample.Confidence, 0.85)
		assert.Less(t, sample.Confidence, 0.95)
	}
}

func TestPredict_InvalidCoordinates(t *testing.T) {
	p := newPredictor(nil)

	_, err := p.Predict(at(8), geo.Point{Lat: 95, Lng: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)
}

func TestPredict_SeededSourceIsReproducible(t *testing.T) {
	p := newPredictor(congestion.SeededRandom())

	first, err := p.Predict(at(8), amsterdam)
	require.NoError(t, err)
	second, err := p.Predict(at(8), amsterdam)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIsPeakHour(t *testing.T) {
	assert.True(t, congestion.IsPeakHour(at(8)))
	assert.True(t, congestion.IsPeakHour(at(17)))
	assert.False(t, congestion.IsPeakHour(at(11)))
	assert.False(t, congestion.IsPeakHour(at(22)))
}
