package clearance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/congestion"
)

// at returns a fixed Tuesday at the given hour.
func at(hour int) time.Time {
	return time.Date(2026, time.March, 10, hour, 0, 0, 0, time.UTC)
}

func TestSelectScenario(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		level     congestion.Level
		emergency *clearance.EmergencyContext
		want      clearance.ScenarioKind
	}{
		{
			name:      "high priority emergency wins",
			now:       at(8),
			level:     congestion.LevelHigh,
			emergency: &clearance.EmergencyContext{Priority: clearance.PriorityHigh, Direction: clearance.DirectionNorth},
			want:      clearance.ScenarioEmergency,
		},
		{
			name:      "medium priority emergency does not preempt",
			now:       at(12),
			level:     congestion.LevelLow,
			emergency: &clearance.EmergencyContext{Priority: clearance.PriorityMedium, Direction: clearance.DirectionNorth},
			want:      clearance.ScenarioNormal,
		},
		{
			name:  "heavy congestion outranks peak hour",
			now:   at(8),
			level: congestion.LevelHigh,
			want:  clearance.ScenarioCongestion,
		},
		{
			name:  "morning peak window",
			now:   at(8),
			level: congestion.LevelLow,
			want:  clearance.ScenarioPeakHour,
		},
		{
			name:  "evening peak window",
			now:   at(18),
			level: congestion.LevelMedium,
			want:  clearance.ScenarioPeakHour,
		},
		{
			name:  "quiet midday",
			now:   at(12),
			level: congestion.LevelLow,
			want:  clearance.ScenarioNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := clearance.IntersectionState{ID: "int_001", CongestionLevel: tt.level}
			got := clearance.SelectScenario(tt.now, state, tt.emergency)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestSelectScenario_PolicyParameters(t *testing.T) {
	emergency := clearance.SelectScenario(at(12), clearance.IntersectionState{}, &clearance.EmergencyContext{
		Priority:  clearance.PriorityHigh,
		Direction: clearance.DirectionEast,
	})
	assert.Equal(t, 180, emergency.BaseDurationSec)
	assert.Equal(t, "ambulance-direction", emergency.PriorityRule)
	assert.Equal(t, clearance.ModeWave, emergency.Mode)
	assert.Equal(t, 30, emergency.PreClearanceLeadSec)

	normal := clearance.SelectScenario(at(12), clearance.IntersectionState{}, nil)
	assert.Equal(t, 30, normal.BaseDurationSec)
	assert.Equal(t, clearance.ModeStandard, normal.Mode)
	assert.Zero(t, normal.PreClearanceLeadSec)
}
