// Package geo provides geographic primitives shared by the routing and
// clearance engines: coordinate validation, great-circle distance and
// straight-line interpolation.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinates indicates a latitude or longitude out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is an immutable geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies within valid coordinate ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]: %w", p.Lat, ErrInvalidCoordinates)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]: %w", p.Lng, ErrInvalidCoordinates)
	}
	return nil
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Lerp returns the point at fraction t along the straight line from a to b.
// t=0 yields a, t=1 yields b.
func Lerp(a, b Point, t float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// Perpendicular returns a unit vector (in coordinate space) perpendicular to
// the line from a to b. Degenerate segments yield a fixed northward vector so
// that callers never divide by zero.
func Perpendicular(a, b Point) (dLat, dLng float64) {
	dx := b.Lat - a.Lat
	dy := b.Lng - a.Lng
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm == 0 {
		return 1, 0
	}
	return -dy / norm, dx / norm
}
