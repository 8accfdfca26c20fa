package intersection_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/intersection"
	"github.com/greenwave/greenwave/pkg/geo"
)

type capturedEvents struct {
	plans []clearance.Plan
	err   error
}

func (c *capturedEvents) PublishClearancePlanned(_ context.Context, plan clearance.Plan) error {
	if c.err != nil {
		return c.err
	}
	c.plans = append(c.plans, plan)
	return nil
}

func newService(t *testing.T, now time.Time, events intersection.EventPublisher) (*intersection.Service, *intersection.InMemoryRepository) {
	t.Helper()

	repo := intersection.NewInMemoryRepository()
	fixed := clock.Fixed(now)
	logger := zerolog.New(io.Discard)

	svc := intersection.NewService(intersection.ServiceConfig{
		Repo:        repo,
		Planner:     clearance.NewPlanner(clearance.PlannerConfig{Logger: logger, Clock: fixed}),
		Coordinator: clearance.NewCoordinator(clearance.CoordinatorConfig{Logger: logger, Clock: fixed}),
		Predictor: congestion.NewPredictor(congestion.PredictorConfig{
			Logger: logger,
			Random: congestion.FixedRandom(0.5),
		}),
		Events: events,
		Logger: logger,
		Clock:  fixed,
	})
	return svc, repo
}

func fourWayInput(name string) intersection.CreateInput {
	return intersection.CreateInput{
		Name:     name,
		Location: geo.Point{Lat: 52.3702, Lng: 4.8952},
		Lanes: []clearance.Lane{
			{Direction: clearance.DirectionNorth},
			{Direction: clearance.DirectionSouth},
			{Direction: clearance.DirectionEast},
			{Direction: clearance.DirectionWest},
		},
		Monitored: true,
	}
}

func quietTuesday() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func TestCreate_RegistersIntersection(t *testing.T) {
	svc, _ := newService(t, quietTuesday(), nil)

	in, err := svc.Create(context.Background(), fourWayInput("Dam Square"))
	require.NoError(t, err)

	assert.NotEmpty(t, in.ID)
	assert.Equal(t, "Dam Square", in.Name)
	assert.Equal(t, congestion.LevelLow, in.CongestionLevel)
	assert.Equal(t, quietTuesday(), in.CreatedAt)

	// Registered lanes always start in the normal state.
	for _, lane := range in.Lanes {
		assert.Equal(t, clearance.StatusNormal, lane.Status)
	}

	stored, err := svc.Get(context.Background(), in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, stored.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t, quietTuesday(), nil)

	tests := []struct {
		name   string
		mutate func(*intersection.CreateInput)
		field  string
	}{
		{
			name:   "missing name",
			mutate: func(in *intersection.CreateInput) { in.Name = "" },
			field:  "name",
		},
		{
			name:   "bad coordinates",
			mutate: func(in *intersection.CreateInput) { in.Location.Lat = 95 },
			field:  "location",
		},
		{
			name:   "no lanes",
			mutate: func(in *intersection.CreateInput) { in.Lanes = nil },
			field:  "lanes",
		},
		{
			name: "unknown direction",
			mutate: func(in *intersection.CreateInput) {
				in.Lanes[0].Direction = "northeast"
			},
			field: "lanes[0].direction",
		},
		{
			name: "duplicate direction",
			mutate: func(in *intersection.CreateInput) {
				in.Lanes[1].Direction = clearance.DirectionNorth
			},
			field: "lanes[1].direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := fourWayInput("Dam Square")
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), input)

			var verr *intersection.ValidationError
			require.ErrorAs(t, err, &verr)

			fields := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestPlanClearance_PersistsLaneState(t *testing.T) {
	svc, _ := newService(t, quietTuesday(), nil)

	in, err := svc.Create(context.Background(), fourWayInput("Dam Square"))
	require.NoError(t, err)

	plan, err := svc.PlanClearance(context.Background(), in.ID, &clearance.EmergencyContext{
		Priority:  clearance.PriorityHigh,
		Direction: clearance.DirectionNorth,
	})
	require.NoError(t, err)
	assert.Equal(t, clearance.ScenarioEmergency, plan.Scenario.Kind)

	stored, err := svc.Get(context.Background(), in.ID)
	require.NoError(t, err)

	byDirection := map[clearance.Direction]clearance.LaneStatus{}
	for _, lane := range stored.Lanes {
		byDirection[lane.Direction] = lane.Status
	}
	assert.Equal(t, clearance.StatusCleared, byDirection[clearance.DirectionNorth])
	assert.Equal(t, clearance.StatusCleared, byDirection[clearance.DirectionSouth])
	assert.Equal(t, clearance.StatusBlocked, byDirection[clearance.DirectionEast])
	assert.Equal(t, clearance.StatusBlocked, byDirection[clearance.DirectionWest])
}

func TestPlanClearance_PublishesEvent(t *testing.T) {
	events := &capturedEvents{}
	svc, _ := newService(t, quietTuesday(), events)

	in, err := svc.Create(context.Background(), fourWayInput("Dam Square"))
	require.NoError(t, err)

	plan, err := svc.PlanClearance(context.Background(), in.ID, nil)
	require.NoError(t, err)

	require.Len(t, events.plans, 1)
	assert.Equal(t, plan.ID, events.plans[0].ID)
}

func TestPlanClearance_PublisherFailureIsNonFatal(t *testing.T) {
	events := &capturedEvents{err: errors.New("broker down")}
	svc, _ := newService(t, quietTuesday(), events)

	in, err := svc.Create(context.Background(), fourWayInput("Dam Square"))
	require.NoError(t, err)

	_, err = svc.PlanClearance(context.Background(), in.ID, nil)
	assert.NoError(t, err)
}

func TestPlanClearance_UnknownIntersection(t *testing.T) {
	svc, _ := newService(t, quietTuesday(), nil)

	_, err := svc.PlanClearance(context.Background(), "int_missing", nil)
	assert.ErrorIs(t, err, intersection.ErrIntersectionNotFound)
}

func TestCoordinateCorridor_UsesStoredOrder(t *testing.T) {
	svc, repo := newService(t, quietTuesday(), nil)

	corridorID := "cor_damrak"
	// Inserted out of order; corridor order must win.
	for i, id := range []string{"int_c", "int_a", "int_b"} {
		order := map[string]int{"int_a": 0, "int_b": 1, "int_c": 2}[id]
		err := repo.Create(context.Background(), &intersection.Intersection{
			ID:            id,
			Name:          "crossing",
			Location:      geo.Point{Lat: 52.37, Lng: 4.89 + float64(i)*0.001},
			Lanes:         []clearance.Lane{{Direction: clearance.DirectionNorth}},
			CorridorID:    &corridorID,
			CorridorOrder: order,
		})
		require.NoError(t, err)
	}

	schedule, err := svc.CoordinateCorridor(context.Background(), corridorID)
	require.NoError(t, err)

	require.Len(t, schedule.Entries, 3)
	assert.Equal(t, "int_a", schedule.Entries[0].IntersectionID)
	assert.Equal(t, "int_b", schedule.Entries[1].IntersectionID)
	assert.Equal(t, "int_c", schedule.Entries[2].IntersectionID)
}

func TestCoordinateCorridor_EmptyCorridor(t *testing.T) {
	svc, _ := newService(t, quietTuesday(), nil)

	_, err := svc.CoordinateCorridor(context.Background(), "cor_empty")
	assert.ErrorIs(t, err, clearance.ErrEmptyCorridor)
}

func TestRefreshCongestion_MonitoredOnly(t *testing.T) {
	// Morning peak pushes monitored intersections to a high level.
	svc, _ := newService(t, time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC), nil)

	monitored, err := svc.Create(context.Background(), fourWayInput("Dam Square"))
	require.NoError(t, err)

	quietInput := fourWayInput("Backstreet")
	quietInput.Monitored = false
	quiet, err := svc.Create(context.Background(), quietInput)
	require.NoError(t, err)

	refreshed, err := svc.RefreshCongestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	updated, err := svc.Get(context.Background(), monitored.ID)
	require.NoError(t, err)
	assert.Equal(t, congestion.LevelHigh, updated.CongestionLevel)

	untouched, err := svc.Get(context.Background(), quiet.ID)
	require.NoError(t, err)
	assert.Equal(t, congestion.LevelLow, untouched.CongestionLevel)
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t, quietTuesday(), nil)

	in, err := svc.Create(context.Background(), fourWayInput("Dam Square"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), in.ID))

	_, err = svc.Get(context.Background(), in.ID)
	assert.ErrorIs(t, err, intersection.ErrIntersectionNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), in.ID), intersection.ErrIntersectionNotFound)
}
