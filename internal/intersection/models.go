// Package intersection provides signalized intersection management services.
package intersection

import (
	"errors"
	"time"

	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

// Repository errors.
var (
	ErrIntersectionNotFound = errors.New("intersection not found")
)

// Intersection represents a signalized intersection under management.
// Lane state is owned here; the clearance planner reads it and returns the
// desired statuses for this record to absorb.
type Intersection struct {
	ID              string
	Name            string
	Location        geo.Point
	Lanes           []clearance.Lane
	CongestionLevel congestion.Level
	CorridorID      *string
	CorridorOrder   int
	Monitored       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ClearanceState adapts the record to the shape the clearance planner reads.
func (i *Intersection) ClearanceState() clearance.IntersectionState {
	return clearance.IntersectionState{
		ID:              i.ID,
		Location:        i.Location,
		Lanes:           i.Lanes,
		CongestionLevel: i.CongestionLevel,
	}
}
