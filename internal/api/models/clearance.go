package models

import (
	"github.com/greenwave/greenwave/internal/clearance"
)

// Lane is a lane with its current signal status.
type Lane struct {
	Direction string `json:"direction"`
	Status    string `json:"status"`
}

// Intersection is an intersection registry record in API form.
type Intersection struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Location        Point     `json:"location"`
	Lanes           []Lane    `json:"lanes"`
	CongestionLevel string    `json:"congestionLevel"`
	CorridorID      *string   `json:"corridorId,omitempty"`
	CorridorOrder   int       `json:"corridorOrder"`
	Monitored       bool      `json:"monitored"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// PagedIntersections is a page of intersection records.
type PagedIntersections struct {
	Items []Intersection    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// IntersectionCreateRequest is the request body for registering an
// intersection.
type IntersectionCreateRequest struct {
	Name          string  `json:"name"`
	Location      Point   `json:"location"`
	Lanes         []Lane  `json:"lanes"`
	CorridorID    *string `json:"corridorId,omitempty"`
	CorridorOrder int     `json:"corridorOrder,omitempty"`
	Monitored     bool    `json:"monitored,omitempty"`
}

// EmergencyContext describes the approaching emergency vehicle in a
// clearance request.
type EmergencyContext struct {
	Priority  string `json:"priority"`
	Direction string `json:"direction"`
}

// ClearancePlanRequest is the request body for
// POST /v1/intersections/{id}/clearance:plan.
type ClearancePlanRequest struct {
	Emergency *EmergencyContext `json:"emergency,omitempty"`
}

// LaneWindow is a lane with its planned clearance window.
type LaneWindow struct {
	Lane
	DurationSec int `json:"durationSec"`
}

// SequenceStep is one activation in a plan's timing sequence.
type SequenceStep struct {
	Direction      string `json:"direction"`
	StartOffsetSec int    `json:"startOffsetSec"`
	DurationSec    int    `json:"durationSec"`
	Action         string `json:"action"`
}

// Impact estimates the traffic consequences of executing a plan.
type Impact struct {
	VehiclesAffected    int     `json:"vehiclesAffected"`
	AverageDelayMinutes float64 `json:"averageDelayMinutes"`
	QueueLengthMeters   int     `json:"queueLengthMeters"`
}

// ClearancePlan is a computed clearance plan in API form.
type ClearancePlan struct {
	ID                    string         `json:"id"`
	IntersectionID        string         `json:"intersectionId"`
	Scenario              string         `json:"scenario"`
	CoordinationMode      string         `json:"coordinationMode"`
	PreClearanceLeadSec   int            `json:"preClearanceLeadSec"`
	Lanes                 []LaneWindow   `json:"lanes"`
	Sequence              []SequenceStep `json:"sequence"`
	TotalClearanceTimeSec int            `json:"totalClearanceTimeSec"`
	EfficiencyScore       float64        `json:"efficiencyScore"`
	Impact                Impact         `json:"estimatedImpact"`
	CreatedAt             Timestamp      `json:"createdAt"`
}

// CorridorCoordinateRequest is the request body for
// POST /v1/corridors:coordinate. Either a stored corridor ID or an explicit
// ordered intersection list must be provided.
type CorridorCoordinateRequest struct {
	CorridorID      string   `json:"corridorId,omitempty"`
	IntersectionIDs []string `json:"intersectionIds,omitempty"`
}

// ScheduleEntry is one intersection's slot in a green-wave schedule.
type ScheduleEntry struct {
	IntersectionID      string    `json:"intersectionId"`
	ClearanceTime       Timestamp `json:"clearanceTime"`
	WavePosition        int       `json:"wavePosition"`
	RecommendedSpeedKmh float64   `json:"recommendedSpeedKmh"`
}

// Note is a standing operator advisory attached to a corridor schedule.
type Note struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// CorridorSchedule is a green-wave schedule in API form.
type CorridorSchedule struct {
	CorridorID            string          `json:"corridorId"`
	Entries               []ScheduleEntry `json:"perIntersection"`
	EfficiencyGainPercent float64         `json:"efficiencyGainPercent"`
	Notes                 []Note          `json:"notes"`
}

// NewClearancePlan converts a clearance plan to API form.
func NewClearancePlan(plan clearance.Plan) ClearancePlan {
	lanes := make([]LaneWindow, 0, len(plan.Lanes))
	for _, lw := range plan.Lanes {
		lanes = append(lanes, LaneWindow{
			Lane:        Lane{Direction: string(lw.Direction), Status: string(lw.Status)},
			DurationSec: lw.DurationSec,
		})
	}

	sequence := make([]SequenceStep, 0, len(plan.Sequence))
	for _, step := range plan.Sequence {
		sequence = append(sequence, SequenceStep{
			Direction:      string(step.Direction),
			StartOffsetSec: step.StartOffsetSec,
			DurationSec:    step.DurationSec,
			Action:         step.Action,
		})
	}

	return ClearancePlan{
		ID:                    plan.ID,
		IntersectionID:        plan.IntersectionID,
		Scenario:              string(plan.Scenario.Kind),
		CoordinationMode:      string(plan.Scenario.Mode),
		PreClearanceLeadSec:   plan.Scenario.PreClearanceLeadSec,
		Lanes:                 lanes,
		Sequence:              sequence,
		TotalClearanceTimeSec: plan.TotalClearanceTimeSec,
		EfficiencyScore:       plan.EfficiencyScore,
		Impact: Impact{
			VehiclesAffected:    plan.Impact.VehiclesAffected,
			AverageDelayMinutes: plan.Impact.AverageDelayMinutes,
			QueueLengthMeters:   plan.Impact.QueueLengthMeters,
		},
		CreatedAt: Timestamp(plan.CreatedAt),
	}
}

// NewCorridorSchedule converts a corridor schedule to API form.
func NewCorridorSchedule(schedule clearance.Schedule) CorridorSchedule {
	entries := make([]ScheduleEntry, 0, len(schedule.Entries))
	for _, entry := range schedule.Entries {
		entries = append(entries, ScheduleEntry{
			IntersectionID:      entry.IntersectionID,
			ClearanceTime:       Timestamp(entry.ClearanceTime),
			WavePosition:        entry.WavePosition,
			RecommendedSpeedKmh: entry.RecommendedSpeedKmh,
		})
	}

	notes := make([]Note, 0, len(schedule.Notes))
	for _, note := range schedule.Notes {
		notes = append(notes, Note{
			Kind:     note.Kind,
			Message:  note.Message,
			Priority: string(note.Priority),
		})
	}

	return CorridorSchedule{
		CorridorID:            schedule.CorridorID,
		Entries:               entries,
		EfficiencyGainPercent: schedule.EfficiencyGainPercent,
		Notes:                 notes,
	}
}
