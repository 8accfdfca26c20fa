package traffic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/pkg/geo"
)

// freeFlowSpeedKmh is the urban free-flow reference speed used to turn a
// measured speed into a saturation score.
const freeFlowSpeedKmh = 50.0

// Provider abstracts a live traffic data source.
type Provider interface {
	// NearestFlow returns the flow reading closest to the given point.
	// Returns ErrNoReading when the source has no data near the point.
	NearestFlow(ctx context.Context, p geo.Point) (*FlowReading, error)
}

// ServiceConfig holds the dependencies for a Service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
}

// Service converts provider flow readings into congestion saturation scores.
// It satisfies the route optimizer's live feed interface.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new traffic service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger.With().Str("component", "traffic_service").Logger(),
	}
}

// Reading returns a [0, 1] congestion saturation score for the given point.
// Zero means free flow at or above the reference speed; one means standstill.
func (s *Service) Reading(ctx context.Context, p geo.Point) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	reading, err := s.provider.NearestFlow(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("nearest flow: %w", err)
	}

	saturation := 1 - reading.SpeedKmh/freeFlowSpeedKmh
	if saturation < 0 {
		saturation = 0
	}
	if saturation > 1 {
		saturation = 1
	}

	s.logger.Debug().
		Str("segment_id", reading.SegmentID).
		Float64("speed_kmh", reading.SpeedKmh).
		Float64("saturation", saturation).
		Msg("live traffic reading")

	return saturation, nil
}
