package clearance_test

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/clock"
)

func newCoordinator(now time.Time) *clearance.Coordinator {
	return clearance.NewCoordinator(clearance.CoordinatorConfig{
		Logger: zerolog.New(io.Discard),
		Clock:  clock.Fixed(now),
	})
}

func TestCoordinate_GreenWaveSchedule(t *testing.T) {
	now := at(12)
	coordinator := newCoordinator(now)

	schedule, err := coordinator.Coordinate("cor_main", []string{"int_001", "int_002", "int_003"})
	require.NoError(t, err)

	assert.Equal(t, "cor_main", schedule.CorridorID)
	require.Len(t, schedule.Entries, 3)

	for i, entry := range schedule.Entries {
		assert.Equal(t, i+1, entry.WavePosition)
		assert.Equal(t, now.Add(time.Duration(i*30)*time.Second), entry.ClearanceTime)
		// 500 m every 30 s.
		assert.InDelta(t, 60.0, entry.RecommendedSpeedKmh, 1e-9)
	}

	assert.Equal(t, "int_001", schedule.Entries[0].IntersectionID)
	assert.Equal(t, "int_002", schedule.Entries[1].IntersectionID)
	assert.Equal(t, "int_003", schedule.Entries[2].IntersectionID)
}

func TestCoordinate_EfficiencyGainIndependentOfLength(t *testing.T) {
	coordinator := newCoordinator(at(12))

	for _, n := range []int{1, 3, 12} {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = "int"
		}
		schedule, err := coordinator.Coordinate("cor_x", ids)
		require.NoError(t, err)
		assert.InDelta(t, 66.67, schedule.EfficiencyGainPercent, 0.01, "n=%d", n)
	}
}

func TestCoordinate_StandingNotes(t *testing.T) {
	coordinator := newCoordinator(at(12))

	schedule, err := coordinator.Coordinate("cor_main", []string{"int_001"})
	require.NoError(t, err)

	require.Len(t, schedule.Notes, 2)
	assert.Equal(t, "optimization", schedule.Notes[0].Kind)
	assert.Contains(t, schedule.Notes[0].Message, "60 km/h")
	assert.Equal(t, "monitoring", schedule.Notes[1].Kind)
}

func TestCoordinate_GeneratesCorridorID(t *testing.T) {
	coordinator := newCoordinator(at(12))

	schedule, err := coordinator.Coordinate("", []string{"int_001"})
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.CorridorID)
}

func TestCoordinate_EmptyCorridor(t *testing.T) {
	coordinator := newCoordinator(at(12))

	_, err := coordinator.Coordinate("cor_main", nil)
	assert.ErrorIs(t, err, clearance.ErrEmptyCorridor)
}
