package models

import (
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/routeopt"
	"github.com/greenwave/greenwave/pkg/polyline"
)

// RouteOptimizeRequest is the request body for POST /v1/routes:optimize.
type RouteOptimizeRequest struct {
	Start          Point  `json:"start"`
	End            Point  `json:"end"`
	EmergencyLevel string `json:"emergencyLevel,omitempty"`
}

// ScoredRoute is a scored route candidate in API form. Geometry is returned
// both as raw points and as an encoded polyline for map rendering.
type ScoredRoute struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Strategy          string   `json:"strategy"`
	Geometry          []Point  `json:"geometry"`
	Polyline          string   `json:"polyline"`
	DistanceKm        float64  `json:"distanceKm"`
	ETAMinutes        float64  `json:"etaMinutes"`
	SignalCount       int      `json:"signalCount"`
	TurnCount         int      `json:"turnCount"`
	TrafficLevel      string   `json:"trafficLevel"`
	PriorityClass     string   `json:"priorityClass"`
	RequiresClearance bool     `json:"requiresClearance"`
	Score             float64  `json:"score"`
	Factors           []string `json:"factors,omitempty"`
}

// Recommendation is an operator advisory attached to an optimization result.
type Recommendation struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Priority string   `json:"priority"`
	Actions  []string `json:"actions,omitempty"`
}

// CongestionSample is a congestion prediction at a point in time and space.
type CongestionSample struct {
	Location           Point     `json:"location"`
	PredictedAt        Timestamp `json:"predictedAt"`
	Level              string    `json:"level"`
	Score              float64   `json:"score"`
	Confidence         float64   `json:"confidence"`
	PredictedClearTime Timestamp `json:"predictedClearTime"`
	Factors            []string  `json:"factors,omitempty"`
}

// RouteOptimizeResponse is the response for POST /v1/routes:optimize.
type RouteOptimizeResponse struct {
	BestRoute       ScoredRoute        `json:"bestRoute"`
	Alternatives    []ScoredRoute      `json:"alternatives"`
	Recommendations []Recommendation   `json:"recommendations"`
	Samples         []CongestionSample `json:"congestionSamples"`
	Confidence      float64            `json:"confidence"`
	Degraded        bool               `json:"degraded"`
	ComputedAt      Timestamp          `json:"computedAt"`
}

// CongestionForecastResponse is the response for GET /v1/congestion/forecast.
type CongestionForecastResponse struct {
	Samples  []CongestionSample `json:"samples"`
	Trend    string             `json:"trend"`
	PeakTime Timestamp          `json:"peakTime"`
}

// NewRouteOptimizeResponse converts an optimization result to API form.
func NewRouteOptimizeResponse(result routeopt.Result) RouteOptimizeResponse {
	alternatives := make([]ScoredRoute, 0, len(result.Alternatives))
	for _, alt := range result.Alternatives {
		alternatives = append(alternatives, newScoredRoute(alt))
	}

	recommendations := make([]Recommendation, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		recommendations = append(recommendations, Recommendation{
			Kind:     string(rec.Kind),
			Message:  rec.Message,
			Priority: string(rec.Priority),
			Actions:  rec.Actions,
		})
	}

	return RouteOptimizeResponse{
		BestRoute:       newScoredRoute(result.BestRoute),
		Alternatives:    alternatives,
		Recommendations: recommendations,
		Samples:         NewCongestionSamples(result.Samples),
		Confidence:      result.Confidence,
		Degraded:        result.Degraded,
		ComputedAt:      Timestamp(result.ComputedAt),
	}
}

// NewCongestionSamples converts congestion samples to API form.
func NewCongestionSamples(samples []congestion.Sample) []CongestionSample {
	out := make([]CongestionSample, 0, len(samples))
	for _, s := range samples {
		out = append(out, CongestionSample{
			Location:           Point{Lat: s.Location.Lat, Lng: s.Location.Lng},
			PredictedAt:        Timestamp(s.PredictedAt),
			Level:              string(s.Level),
			Score:              s.Score,
			Confidence:         s.Confidence,
			PredictedClearTime: Timestamp(s.PredictedClearTime),
			Factors:            s.Factors,
		})
	}
	return out
}

// newScoredRoute converts a scored route to API form.
func newScoredRoute(route routeopt.ScoredRoute) ScoredRoute {
	geometry := make([]Point, 0, len(route.Geometry))
	coords := make([]polyline.Coordinate, 0, len(route.Geometry))
	for _, p := range route.Geometry {
		geometry = append(geometry, Point{Lat: p.Lat, Lng: p.Lng})
		coords = append(coords, polyline.Coordinate{Lat: p.Lat, Lon: p.Lng})
	}

	return ScoredRoute{
		ID:                route.ID,
		Name:              route.Name,
		Strategy:          string(route.Strategy),
		Geometry:          geometry,
		Polyline:          polyline.Encode(coords),
		DistanceKm:        route.DistanceKm,
		ETAMinutes:        route.ETAMinutes,
		SignalCount:       route.SignalCount,
		TurnCount:         route.TurnCount,
		TrafficLevel:      string(route.Traffic),
		PriorityClass:     route.PriorityClass,
		RequiresClearance: route.RequiresClearance,
		Score:             route.Score,
		Factors:           route.Factors,
	}
}
