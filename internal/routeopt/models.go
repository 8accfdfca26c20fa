// Package routeopt generates, scores and caches candidate emergency routes
// between an origin and a destination under an emergency-priority policy.
package routeopt

import (
	"errors"
	"time"

	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

// Sentinel errors for route optimization.
var (
	// ErrInvalidCoordinates indicates a malformed origin or destination.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Strategy identifies one of the five fixed route profiles.
type Strategy string

const (
	StrategyHighway     Strategy = "highway"
	StrategyCity        Strategy = "city"
	StrategyBalanced    Strategy = "balanced"
	StrategyEmergency   Strategy = "emergency"
	StrategyAlternative Strategy = "alternative"
)

// EmergencyLevel is the urgency policy applied when scoring candidates.
type EmergencyLevel string

const (
	EmergencyNormal EmergencyLevel = "normal"
	EmergencyMedium EmergencyLevel = "medium"
	EmergencyHigh   EmergencyLevel = "high"
)

// Candidate is one generated route option. Candidates are immutable once
// generated; scoring wraps them in a ScoredRoute rather than mutating them.
type Candidate struct {
	ID                string
	Name              string
	Strategy          Strategy
	Geometry          []geo.Point
	DistanceKm        float64
	ETAMinutes        float64
	SignalCount       int
	TurnCount         int
	Traffic           congestion.Level
	PriorityClass     string
	RequiresClearance bool
}

// ScoredRoute augments a Candidate with its desirability score and the
// factors that shaped it.
type ScoredRoute struct {
	Candidate
	Score   float64 // [0, 100]
	Factors []string
}

// RecommendationKind classifies an advisory attached to a result.
type RecommendationKind string

const (
	RecommendationWarning    RecommendationKind = "warning"
	RecommendationAlert      RecommendationKind = "alert"
	RecommendationSuggestion RecommendationKind = "suggestion"
	RecommendationAction     RecommendationKind = "action"
	RecommendationInfo       RecommendationKind = "info"
	RecommendationCritical   RecommendationKind = "critical"
)

// Priority orders recommendations for display.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Recommendation is a transient operator advisory generated per optimization.
type Recommendation struct {
	Kind     RecommendationKind
	Message  string
	Priority Priority
	Actions  []string
}

// Result is the full outcome of one optimization. It is the cache value and
// is returned unchanged on cache hits within the TTL window.
type Result struct {
	BestRoute       ScoredRoute
	Alternatives    []ScoredRoute // at most 3, descending score
	Recommendations []Recommendation
	Samples         []congestion.Sample
	Confidence      float64 // [0.6, 0.95]
	Degraded        bool    // true only for the fallback result
	ComputedAt      time.Time
}

// Request describes one optimization call.
type Request struct {
	Start          geo.Point
	End            geo.Point
	EmergencyLevel EmergencyLevel
}
