package routeopt

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

// waypointCount is the number of interior waypoints synthesized per candidate,
// in addition to the start and end points.
const waypointCount = 8

// strategyProfile carries the fixed distortion parameters for one strategy.
type strategyProfile struct {
	strategy       Strategy
	name           string
	distanceFactor float64
	speedKmh       float64
	timeFactor     float64
	curvature      float64
	signalsPerKm   float64
	turnsPerKm     float64
	priorityClass  string
	clearance      bool

	// trafficWeights maps a sampled congestion level to its contribution to
	// this strategy's weighted traffic sum.
	trafficWeights map[congestion.Level]float64
}

// strategyProfiles is the fixed candidate set, in generation order. The order
// is also the tie-break order when scores are equal.
var strategyProfiles = []strategyProfile{
	{
		strategy:       StrategyHighway,
		name:           "Highway priority",
		distanceFactor: 1.1,
		speedKmh:       60,
		timeFactor:     1,
		curvature:      0.003,
		signalsPerKm:   0.3,
		turnsPerKm:     0.2,
		priorityClass:  "speed",
		trafficWeights: map[congestion.Level]float64{
			congestion.LevelLow: 0.2, congestion.LevelMedium: 0.55, congestion.LevelHigh: 0.9,
		},
	},
	{
		strategy:       StrategyCity,
		name:           "Direct city streets",
		distanceFactor: 0.9,
		speedKmh:       30,
		timeFactor:     1,
		curvature:      0.006,
		signalsPerKm:   1.5,
		turnsPerKm:     1.2,
		priorityClass:  "distance",
		trafficWeights: map[congestion.Level]float64{
			congestion.LevelLow: 0.3, congestion.LevelMedium: 0.6, congestion.LevelHigh: 1.0,
		},
	},
	{
		strategy:       StrategyBalanced,
		name:           "Balanced",
		distanceFactor: 1,
		speedKmh:       45,
		timeFactor:     1,
		curvature:      0.004,
		signalsPerKm:   0.8,
		turnsPerKm:     0.6,
		priorityClass:  "balanced",
		trafficWeights: map[congestion.Level]float64{
			congestion.LevelLow: 0.25, congestion.LevelMedium: 0.55, congestion.LevelHigh: 0.85,
		},
	},
	{
		strategy:       StrategyEmergency,
		name:           "Emergency corridor",
		distanceFactor: 1.2,
		speedKmh:       70,
		timeFactor:     0.7, // priority clearance discounts travel time
		curvature:      0.002,
		signalsPerKm:   0.5,
		turnsPerKm:     0.3,
		priorityClass:  "emergency",
		clearance:      true,
		trafficWeights: map[congestion.Level]float64{
			congestion.LevelLow: 0.05, congestion.LevelMedium: 0.1, congestion.LevelHigh: 0.2,
		},
	},
	{
		strategy:       StrategyAlternative,
		name:           "Reliable alternative",
		distanceFactor: 1.3,
		speedKmh:       40,
		timeFactor:     1,
		curvature:      0.008,
		signalsPerKm:   0.2,
		turnsPerKm:     0.15,
		priorityClass:  "reliability",
		trafficWeights: map[congestion.Level]float64{
			congestion.LevelLow: 0.2, congestion.LevelMedium: 0.45, congestion.LevelHigh: 0.7,
		},
	},
}

// Generate produces the five fixed candidates for a start/end pair, weighting
// each strategy's traffic level against the supplied congestion samples.
func Generate(start, end geo.Point, samples []congestion.Sample) ([]Candidate, error) {
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("start: %w", ErrInvalidCoordinates)
	}
	if err := end.Validate(); err != nil {
		return nil, fmt.Errorf("end: %w", ErrInvalidCoordinates)
	}

	baseDistance := geo.Haversine(start, end)

	candidates := make([]Candidate, 0, len(strategyProfiles))
	for _, profile := range strategyProfiles {
		distance := baseDistance * profile.distanceFactor
		eta := distance / profile.speedKmh * 60 * profile.timeFactor

		candidates = append(candidates, Candidate{
			ID:                fmt.Sprintf("rte_%s_%s", profile.strategy, uuid.New().String()[:8]),
			Name:              profile.name,
			Strategy:          profile.strategy,
			Geometry:          buildGeometry(start, end, profile.curvature),
			DistanceKm:        distance,
			ETAMinutes:        eta,
			SignalCount:       int(math.Round(distance * profile.signalsPerKm)),
			TurnCount:         int(math.Round(distance * profile.turnsPerKm)),
			Traffic:           weightedTrafficLevel(profile, samples),
			PriorityClass:     profile.priorityClass,
			RequiresClearance: profile.clearance,
		})
	}

	return candidates, nil
}

// buildGeometry interpolates waypoints along the straight line and displaces
// them sinusoidally so candidates are not literally straight segments.
func buildGeometry(start, end geo.Point, curvature float64) []geo.Point {
	points := make([]geo.Point, 0, waypointCount+2)
	points = append(points, start)

	perpLat, perpLng := geo.Perpendicular(start, end)
	for i := 1; i <= waypointCount; i++ {
		t := float64(i) / float64(waypointCount+1)
		base := geo.Lerp(start, end, t)
		offset := math.Sin(t*math.Pi) * curvature
		points = append(points, geo.Point{
			Lat: base.Lat + perpLat*offset,
			Lng: base.Lng + perpLng*offset,
		})
	}

	return append(points, end)
}

// Traffic-level thresholds on the weighted sample mean.
const (
	trafficHighThreshold   = 0.6
	trafficMediumThreshold = 0.3
)

// weightedTrafficLevel derives a candidate's traffic level from the sample
// distribution, using the strategy's level weights.
func weightedTrafficLevel(profile strategyProfile, samples []congestion.Sample) congestion.Level {
	if len(samples) == 0 {
		return congestion.LevelLow
	}

	var sum float64
	for _, s := range samples {
		sum += profile.trafficWeights[s.Level]
	}
	mean := sum / float64(len(samples))

	switch {
	case mean > trafficHighThreshold:
		return congestion.LevelHigh
	case mean > trafficMediumThreshold:
		return congestion.LevelMedium
	default:
		return congestion.LevelLow
	}
}
