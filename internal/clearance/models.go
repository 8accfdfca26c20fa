// Package clearance computes intersection clearance plans and multi-
// intersection green-wave schedules for emergency corridors.
package clearance

import (
	"errors"
	"time"

	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

// Sentinel errors for clearance planning.
var (
	// ErrNoLanes indicates an intersection without lane state. Acting on a
	// wrong clearance plan is worse than reporting failure, so there is no
	// fallback.
	ErrNoLanes = errors.New("intersection has no lanes")
	// ErrUnknownDirection indicates a lane direction outside the closed set.
	ErrUnknownDirection = errors.New("unknown lane direction")
	// ErrEmptyCorridor indicates a corridor with no intersections.
	ErrEmptyCorridor = errors.New("corridor has no intersections")
)

// Direction is a lane's compass direction.
type Direction string

const (
	DirectionNorth Direction = "north"
	DirectionSouth Direction = "south"
	DirectionEast  Direction = "east"
	DirectionWest  Direction = "west"
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionNorth:
		return DirectionSouth
	case DirectionSouth:
		return DirectionNorth
	case DirectionEast:
		return DirectionWest
	case DirectionWest:
		return DirectionEast
	default:
		return d
	}
}

// valid reports whether the direction is in the closed set.
func (d Direction) valid() bool {
	switch d {
	case DirectionNorth, DirectionSouth, DirectionEast, DirectionWest:
		return true
	default:
		return false
	}
}

// isNorthSouth groups lanes for the alternating coordination mode.
func (d Direction) isNorthSouth() bool {
	return d == DirectionNorth || d == DirectionSouth
}

// LaneStatus is a lane's signal state within a clearance plan.
type LaneStatus string

const (
	StatusNormal      LaneStatus = "normal"
	StatusCleared     LaneStatus = "cleared"
	StatusBlocked     LaneStatus = "blocked"
	StatusAlternating LaneStatus = "alternating"
)

// Lane is one approach lane of an intersection. The intersection record owns
// lane state; the planner reads it and returns an updated copy.
type Lane struct {
	Direction Direction  `json:"direction"`
	Status    LaneStatus `json:"status"`
}

// IntersectionState is the caller-supplied view of an intersection.
type IntersectionState struct {
	ID              string
	Location        geo.Point
	Lanes           []Lane
	CongestionLevel congestion.Level
}

// Priority is the urgency of an emergency context.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// EmergencyContext describes an approaching emergency vehicle.
type EmergencyContext struct {
	Priority  Priority  `json:"priority"`
	Direction Direction `json:"direction"`
}

// ScenarioKind is the situational policy bucket for an intersection.
type ScenarioKind string

const (
	ScenarioEmergency  ScenarioKind = "emergency"
	ScenarioCongestion ScenarioKind = "congestion"
	ScenarioPeakHour   ScenarioKind = "peak-hour"
	ScenarioNormal     ScenarioKind = "normal"
)

// CoordinationMode is the timing pattern used to sequence lane activations.
type CoordinationMode string

const (
	ModeWave         CoordinationMode = "wave"
	ModeSimultaneous CoordinationMode = "simultaneous"
	ModeAlternating  CoordinationMode = "alternating"
	ModeStandard     CoordinationMode = "standard"
)

// Scenario binds a kind to its immutable policy parameters.
type Scenario struct {
	Kind                ScenarioKind
	BaseDurationSec     int
	LanePattern         string
	PriorityRule        string
	Mode                CoordinationMode
	PreClearanceLeadSec int
}

// LaneWindow is a lane with its planned clearance window.
type LaneWindow struct {
	Lane
	DurationSec int
}

// SequenceStep is one activation in a plan's timing sequence.
type SequenceStep struct {
	Direction      Direction
	StartOffsetSec int
	DurationSec    int
	Action         string
}

// Impact estimates the traffic consequences of executing a plan. Figures are
// additive across lanes, not averaged.
type Impact struct {
	VehiclesAffected    int
	AverageDelayMinutes float64
	QueueLengthMeters   int
}

// Plan is a computed clearance plan for one intersection. Plans are computed
// fresh per request and never persisted by this package.
type Plan struct {
	ID                    string
	IntersectionID        string
	Scenario              Scenario
	Lanes                 []LaneWindow
	Sequence              []SequenceStep
	TotalClearanceTimeSec int
	EfficiencyScore       float64 // [0, 100]
	Impact                Impact
	CreatedAt             time.Time
}

// Note is a standing operator advisory attached to a corridor schedule.
type Note struct {
	Kind     string
	Message  string
	Priority Priority
}

// ScheduleEntry is one intersection's slot in a green-wave schedule.
type ScheduleEntry struct {
	IntersectionID      string
	ClearanceTime       time.Time
	WavePosition        int
	RecommendedSpeedKmh float64
}

// Schedule is a green-wave offset schedule along a corridor. Entry order
// matches the caller-supplied intersection sequence.
type Schedule struct {
	CorridorID            string
	Entries               []ScheduleEntry
	EfficiencyGainPercent float64
	Notes                 []Note
}
