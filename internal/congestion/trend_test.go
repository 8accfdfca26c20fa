package congestion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

func TestForecastWindow_WorseningIntoMorningPeak(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	// 05:00 through 08:00: low baseline rising into the morning peak.
	forecast, err := p.ForecastWindow(at(5), amsterdam, 4, time.Hour)
	require.NoError(t, err)

	require.Len(t, forecast.Samples, 4)
	assert.Equal(t, congestion.TrendWorsening, forecast.Trend)
	assert.Equal(t, at(8), forecast.PeakTime)
}

func TestForecastWindow_ImprovingOutOfEveningPeak(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	// 19:00 through 22:00: high evening peak falling back to baseline.
	forecast, err := p.ForecastWindow(at(19), amsterdam, 4, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, congestion.TrendImproving, forecast.Trend)
	assert.Equal(t, at(19), forecast.PeakTime)
}

func TestForecastWindow_StableOffPeak(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	forecast, err := p.ForecastWindow(at(1), amsterdam, 3, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, congestion.TrendStable, forecast.Trend)
}

func TestForecastWindow_SingleStepIsStable(t *testing.T) {
	p := newPredictor(congestion.FixedRandom(0))

	forecast, err := p.ForecastWindow(at(8), amsterdam, 1, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, congestion.TrendStable, forecast.Trend)
}

func TestForecastWindow_EmptyWindow(t *testing.T) {
	p := newPredictor(nil)

	_, err := p.ForecastWindow(at(8), amsterdam, 0, time.Hour)
	assert.ErrorIs(t, err, congestion.ErrEmptyWindow)
}

func TestForecastWindow_InvalidLocation(t *testing.T) {
	p := newPredictor(nil)

	_, err := p.ForecastWindow(at(8), geo.Point{Lat: 0, Lng: 200}, 3, time.Hour)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)
}
