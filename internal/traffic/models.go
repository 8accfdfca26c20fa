// Package traffic provides live road traffic flow readings.
package traffic

import (
	"errors"
	"time"

	"github.com/greenwave/greenwave/pkg/geo"
)

// Provider errors.
var (
	ErrNoReading = errors.New("no traffic reading available")
)

// FlowReading is a single measured traffic flow observation near a point.
type FlowReading struct {
	SegmentID           string
	Location            geo.Point
	SpeedKmh            float64
	FlowVehiclesPerHour int
	MeasuredAt          time.Time
}
