package geo_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/pkg/geo"
)

func TestHaversine_Symmetry(t *testing.T) {
	a := geo.Point{Lat: 52.3676, Lng: 4.9041}
	b := geo.Point{Lat: 52.0907, Lng: 5.1214}

	assert.InDelta(t, geo.Haversine(a, b), geo.Haversine(b, a), 1e-9)
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	p := geo.Point{Lat: 52.3676, Lng: 4.9041}
	assert.Equal(t, 0.0, geo.Haversine(p, p))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Amsterdam Centraal to Utrecht Centraal is roughly 35 km as the crow flies.
	a := geo.Point{Lat: 52.3791, Lng: 4.9003}
	b := geo.Point{Lat: 52.0894, Lng: 5.1100}

	d := geo.Haversine(a, b)
	assert.InDelta(t, 35, d, 2)
}

func TestLerp_Endpoints(t *testing.T) {
	a := geo.Point{Lat: 10, Lng: 20}
	b := geo.Point{Lat: 30, Lng: 40}

	assert.Equal(t, a, geo.Lerp(a, b, 0))
	assert.Equal(t, b, geo.Lerp(a, b, 1))
	assert.Equal(t, geo.Point{Lat: 20, Lng: 30}, geo.Lerp(a, b, 0.5))
}

func TestPerpendicular_UnitLength(t *testing.T) {
	a := geo.Point{Lat: 52.0, Lng: 4.0}
	b := geo.Point{Lat: 52.5, Lng: 4.8}

	dLat, dLng := geo.Perpendicular(a, b)
	require.InDelta(t, 1.0, math.Sqrt(dLat*dLat+dLng*dLng), 1e-9)

	// Perpendicularity: dot product with the segment direction is zero.
	dot := dLat*(b.Lat-a.Lat) + dLng*(b.Lng-a.Lng)
	assert.InDelta(t, 0, dot, 1e-9)
}

func TestPerpendicular_DegenerateSegment(t *testing.T) {
	p := geo.Point{Lat: 52.0, Lng: 4.0}
	dLat, dLng := geo.Perpendicular(p, p)
	assert.Equal(t, 1.0, dLat)
	assert.Equal(t, 0.0, dLng)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		point   geo.Point
		wantErr bool
	}{
		{"valid", geo.Point{Lat: 52.3676, Lng: 4.9041}, false},
		{"lat too high", geo.Point{Lat: 91, Lng: 0}, true},
		{"lat too low", geo.Point{Lat: -91, Lng: 0}, true},
		{"lng too high", geo.Point{Lat: 0, Lng: 181}, true},
		{"lng too low", geo.Point{Lat: 0, Lng: -181}, true},
		{"boundary", geo.Point{Lat: 90, Lng: -180}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, geo.ErrInvalidCoordinates))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
