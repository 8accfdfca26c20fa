package routeopt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/routeopt"
	"github.com/greenwave/greenwave/pkg/geo"
)

var (
	cityCenter = geo.Point{Lat: 52.3676, Lng: 4.9041}
	hospital   = geo.Point{Lat: 52.2930, Lng: 4.9620}
)

func sampleAll(level congestion.Level, n int) []congestion.Sample {
	samples := make([]congestion.Sample, n)
	for i := range samples {
		samples[i] = congestion.Sample{
			Location:    cityCenter,
			PredictedAt: time.Now(),
			Level:       level,
			Confidence:  0.9,
		}
	}
	return samples
}

func TestGenerate_FiveCandidatesInFixedOrder(t *testing.T) {
	candidates, err := routeopt.Generate(cityCenter, hospital, sampleAll(congestion.LevelLow, 10))
	require.NoError(t, err)
	require.Len(t, candidates, 5)

	order := []routeopt.Strategy{
		routeopt.StrategyHighway,
		routeopt.StrategyCity,
		routeopt.StrategyBalanced,
		routeopt.StrategyEmergency,
		routeopt.StrategyAlternative,
	}
	for i, want := range order {
		assert.Equal(t, want, candidates[i].Strategy)
	}
}

func TestGenerate_DistanceDistortion(t *testing.T) {
	candidates, err := routeopt.Generate(cityCenter, hospital, nil)
	require.NoError(t, err)

	base := geo.Haversine(cityCenter, hospital)
	byStrategy := indexByStrategy(candidates)

	assert.InDelta(t, base*1.1, byStrategy[routeopt.StrategyHighway].DistanceKm, 1e-9)
	assert.InDelta(t, base*0.9, byStrategy[routeopt.StrategyCity].DistanceKm, 1e-9)
	assert.InDelta(t, base, byStrategy[routeopt.StrategyBalanced].DistanceKm, 1e-9)
	assert.InDelta(t, base*1.2, byStrategy[routeopt.StrategyEmergency].DistanceKm, 1e-9)
	assert.InDelta(t, base*1.3, byStrategy[routeopt.StrategyAlternative].DistanceKm, 1e-9)
}

func TestGenerate_EmergencyTimeDiscount(t *testing.T) {
	candidates, err := routeopt.Generate(cityCenter, hospital, nil)
	require.NoError(t, err)

	byStrategy := indexByStrategy(candidates)
	emergency := byStrategy[routeopt.StrategyEmergency]

	// 20% longer distance at 70 km/h with a 30% travel-time discount.
	wantETA := emergency.DistanceKm / 70 * 60 * 0.7
	assert.InDelta(t, wantETA, emergency.ETAMinutes, 1e-9)
	assert.True(t, emergency.RequiresClearance)
	assert.Equal(t, "emergency", emergency.PriorityClass)
}

func TestGenerate_EmergencyStaysLowUnderHeavyCongestion(t *testing.T) {
	candidates, err := routeopt.Generate(cityCenter, hospital, sampleAll(congestion.LevelHigh, 10))
	require.NoError(t, err)

	byStrategy := indexByStrategy(candidates)

	// Pre-clearance weighting keeps the emergency corridor effectively free.
	assert.Equal(t, congestion.LevelLow, byStrategy[routeopt.StrategyEmergency].Traffic)
	assert.Equal(t, congestion.LevelHigh, byStrategy[routeopt.StrategyCity].Traffic)
	assert.Equal(t, congestion.LevelHigh, byStrategy[routeopt.StrategyHighway].Traffic)
}

func TestGenerate_GeometryIsNotAStraightLine(t *testing.T) {
	candidates, err := routeopt.Generate(cityCenter, hospital, nil)
	require.NoError(t, err)

	for _, c := range candidates {
		require.GreaterOrEqual(t, len(c.Geometry), 3, "strategy %s", c.Strategy)
		assert.Equal(t, cityCenter, c.Geometry[0])
		assert.Equal(t, hospital, c.Geometry[len(c.Geometry)-1])

		// Interior waypoints carry a lateral offset.
		mid := c.Geometry[len(c.Geometry)/2]
		straight := geo.Lerp(cityCenter, hospital, 0.5)
		assert.NotEqual(t, straight, mid, "strategy %s", c.Strategy)
	}
}

func TestGenerate_DegenerateSamePoint(t *testing.T) {
	candidates, err := routeopt.Generate(cityCenter, cityCenter, nil)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.InDelta(t, 0, c.DistanceKm, 1e-9, "strategy %s", c.Strategy)
		assert.InDelta(t, 0, c.ETAMinutes, 1e-9, "strategy %s", c.Strategy)
		assert.Zero(t, c.SignalCount)
	}
}

func TestGenerate_InvalidCoordinates(t *testing.T) {
	_, err := routeopt.Generate(geo.Point{Lat: 100, Lng: 0}, hospital, nil)
	assert.ErrorIs(t, err, routeopt.ErrInvalidCoordinates)

	_, err = routeopt.Generate(cityCenter, geo.Point{Lat: 0, Lng: -200}, nil)
	assert.ErrorIs(t, err, routeopt.ErrInvalidCoordinates)
}

func indexByStrategy(candidates []routeopt.Candidate) map[routeopt.Strategy]routeopt.Candidate {
	m := make(map[routeopt.Strategy]routeopt.Candidate, len(candidates))
	for _, c := range candidates {
		m[c.Strategy] = c
	}
	return m
}
