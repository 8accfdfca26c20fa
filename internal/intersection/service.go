package intersection

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/internal/api/models"
	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

// Validation constants.
const (
	MaxNameLength = 120
)

// EventPublisher receives notifications when clearance plans are activated.
// Implementations must be safe for concurrent use. Publishing is best-effort;
// failures are logged and never fail the plan.
type EventPublisher interface {
	PublishClearancePlanned(ctx context.Context, plan clearance.Plan) error
}

// ServiceConfig holds the dependencies for a Service.
type ServiceConfig struct {
	Repo        Repository
	Planner     *clearance.Planner
	Coordinator *clearance.Coordinator
	Predictor   *congestion.Predictor
	Events      EventPublisher
	Logger      zerolog.Logger
	Clock       clock.Clock
}

// Service provides intersection operations: CRUD over the registry plus the
// clearance planning and corridor coordination entry points.
type Service struct {
	repo        Repository
	planner     *clearance.Planner
	coordinator *clearance.Coordinator
	predictor   *congestion.Predictor
	events      EventPublisher
	logger      zerolog.Logger
	clock       clock.Clock
}

// NewService creates a new intersection service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	return &Service{
		repo:        cfg.Repo,
		planner:     cfg.Planner,
		coordinator: cfg.Coordinator,
		predictor:   cfg.Predictor,
		events:      cfg.Events,
		logger:      cfg.Logger.With().Str("component", "intersection_service").Logger(),
		clock:       cfg.Clock,
	}
}

// CreateInput is the input for registering an intersection.
type CreateInput struct {
	Name          string
	Location      geo.Point
	Lanes         []clearance.Lane
	CorridorID    *string
	CorridorOrder int
	Monitored     bool
}

// Create registers a new intersection.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Intersection, error) {
	if fieldErrors := validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.clock.Now()
	in := &Intersection{
		ID:              "int_" + uuid.New().String()[:8],
		Name:            input.Name,
		Location:        input.Location,
		Lanes:           normalizeLanes(input.Lanes),
		CongestionLevel: congestion.LevelLow,
		CorridorID:      input.CorridorID,
		CorridorOrder:   input.CorridorOrder,
		Monitored:       input.Monitored,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, in); err != nil {
		return nil, err
	}

	return in, nil
}

// Get retrieves an intersection by ID.
func (s *Service) Get(ctx context.Context, id string) (*Intersection, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves intersections with pagination.
func (s *Service) List(ctx context.Context, limit int, cursor string) (*ListResult, error) {
	return s.repo.List(ctx, ListOptions{Limit: limit, Cursor: cursor})
}

// Delete removes an intersection.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// PlanClearance computes a clearance plan for an intersection and persists
// the desired lane statuses. The plan is returned for the caller to act on.
func (s *Service) PlanClearance(ctx context.Context, id string, emergency *clearance.EmergencyContext) (clearance.Plan, error) {
	in, err := s.repo.Get(ctx, id)
	if err != nil {
		return clearance.Plan{}, err
	}

	plan, err := s.planner.Plan(in.ClearanceState(), emergency)
	if err != nil {
		return clearance.Plan{}, err
	}

	lanes := make([]clearance.Lane, 0, len(plan.Lanes))
	for _, lw := range plan.Lanes {
		lanes = append(lanes, lw.Lane)
	}
	if err := s.repo.UpdateLanes(ctx, id, lanes); err != nil {
		return clearance.Plan{}, fmt.Errorf("persist lane state: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishClearancePlanned(ctx, plan); err != nil {
			s.logger.Warn().Err(err).
				Str("intersection_id", id).
				Str("plan_id", plan.ID).
				Msg("failed to publish clearance event")
		}
	}

	return plan, nil
}

// CoordinateCorridor builds a green-wave schedule over a stored corridor's
// intersections, in corridor order.
func (s *Service) CoordinateCorridor(ctx context.Context, corridorID string) (clearance.Schedule, error) {
	intersections, err := s.repo.ListByCorridor(ctx, corridorID)
	if err != nil {
		return clearance.Schedule{}, err
	}

	ids := make([]string, 0, len(intersections))
	for _, in := range intersections {
		ids = append(ids, in.ID)
	}

	return s.coordinator.Coordinate(corridorID, ids)
}

// CoordinateAdHoc builds a green-wave schedule over a caller-supplied
// intersection sequence without touching the registry.
func (s *Service) CoordinateAdHoc(_ context.Context, intersectionIDs []string) (clearance.Schedule, error) {
	return s.coordinator.Coordinate("", intersectionIDs)
}

// RefreshCongestion re-predicts congestion for every monitored intersection
// and stores the new level. Returns the number of records refreshed.
func (s *Service) RefreshCongestion(ctx context.Context) (int, error) {
	intersections, err := s.repo.ListMonitored(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	refreshed := 0
	for _, in := range intersections {
		sample, err := s.predictor.Predict(now, in.Location)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("intersection_id", in.ID).
				Msg("congestion refresh skipped")
			continue
		}

		in.CongestionLevel = sample.Level
		in.UpdatedAt = now
		if err := s.repo.Update(ctx, in); err != nil {
			if errors.Is(err, ErrIntersectionNotFound) {
				continue
			}
			return refreshed, err
		}
		refreshed++
	}

	return refreshed, nil
}

// validateCreateInput validates the register intersection input.
func validateCreateInput(input CreateInput) []models.FieldError {
	var errs []models.FieldError

	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 120 characters"})
	}

	if err := input.Location.Validate(); err != nil {
		errs = append(errs, models.FieldError{Field: "location", Message: "coordinates out of range"})
	}

	if len(input.Lanes) == 0 {
		errs = append(errs, models.FieldError{Field: "lanes", Message: "is required"})
	} else {
		seen := map[clearance.Direction]bool{}
		for i, lane := range input.Lanes {
			switch lane.Direction {
			case clearance.DirectionNorth, clearance.DirectionSouth, clearance.DirectionEast, clearance.DirectionWest:
			default:
				errs = append(errs, models.FieldError{
					Field:   fmt.Sprintf("lanes[%d].direction", i),
					Message: "must be one of north, south, east, west",
				})
				continue
			}
			if seen[lane.Direction] {
				errs = append(errs, models.FieldError{
					Field:   fmt.Sprintf("lanes[%d].direction", i),
					Message: "duplicate direction",
				})
			}
			seen[lane.Direction] = true
		}
	}

	return errs
}

// normalizeLanes resets lane statuses to normal; clearance state is derived,
// not registered.
func normalizeLanes(lanes []clearance.Lane) []clearance.Lane {
	normalized := make([]clearance.Lane, len(lanes))
	for i, lane := range lanes {
		normalized[i] = clearance.Lane{Direction: lane.Direction, Status: clearance.StatusNormal}
	}
	return normalized
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
