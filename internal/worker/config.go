// Package worker provides background job processing for Greenwave.
package worker

import (
	"time"

	"github.com/greenwave/greenwave/pkg/geo"
)

// SweepTarget represents a geographic region to sweep for congestion.
type SweepTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lng coordinates to sweep.
	// Typically hospital approaches and the main emergency corridors.
	Points []geo.Point

	// Priority determines sweep order (lower = higher priority).
	Priority int
}

// SweepConfig holds configuration for the congestion sweep job.
type SweepConfig struct {
	// Targets are the geographic regions to sweep.
	// If empty, uses DefaultSweepTargets.
	Targets []SweepTarget

	// Concurrency is the number of concurrent sweep operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each sweep operation.
	// Default: 30 seconds
	Timeout time.Duration

	// SweepCongestion enables the corridor hotspot congestion sweep.
	// Default: true
	SweepCongestion bool

	// RefreshIntersections enables the monitored intersection refresh.
	// Default: true
	RefreshIntersections bool
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Targets:              DefaultSweepTargets(),
		Concurrency:          3,
		Timeout:              30 * time.Second,
		SweepCongestion:      true,
		RefreshIntersections: true,
	}
}

// DefaultSweepTargets returns the default sweep targets for the Amsterdam
// region. Focuses on hospital approaches and the ring road corridors.
func DefaultSweepTargets() []SweepTarget {
	return []SweepTarget{
		{
			Name:     "Centrum",
			Priority: 1,
			Points: []geo.Point{
				{Lat: 52.3676, Lng: 4.9041}, // Dam / Rokin
				{Lat: 52.3745, Lng: 4.8980}, // Nieuwezijds Voorburgwal
				{Lat: 52.3601, Lng: 4.8852}, // Leidseplein
			},
		},
		{
			Name:     "OLVG Oost approach",
			Priority: 1,
			Points: []geo.Point{
				{Lat: 52.3586, Lng: 4.9216}, // Wibautstraat
				{Lat: 52.3553, Lng: 4.9261}, // Oosterpark
			},
		},
		{
			Name:     "Amsterdam UMC AMC approach",
			Priority: 1,
			Points: []geo.Point{
				{Lat: 52.2930, Lng: 4.9620}, // AMC main entrance
				{Lat: 52.3114, Lng: 4.9469}, // Gooiseweg
			},
		},
		{
			Name:     "VUmc approach",
			Priority: 2,
			Points: []geo.Point{
				{Lat: 52.3340, Lng: 4.8600}, // De Boelelaan
				{Lat: 52.3386, Lng: 4.8919}, // Zuidas
			},
		},
		{
			Name:     "Ring A10 West",
			Priority: 2,
			Points: []geo.Point{
				{Lat: 52.3809, Lng: 4.8410}, // Bos en Lommerplein
				{Lat: 52.3571, Lng: 4.8390}, // Lelylaan
			},
		},
		{
			Name:     "Noord",
			Priority: 3,
			Points: []geo.Point{
				{Lat: 52.3894, Lng: 4.9006}, // IJplein
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c SweepConfig) AllPoints() []geo.Point {
	var points []geo.Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to sweep.
func (c SweepConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
