package clearance

import (
	"time"

	"github.com/greenwave/greenwave/internal/congestion"
)

// scenarioParams binds each scenario kind to its fixed policy parameters.
// Values are policy constants, not tunables.
var scenarioParams = map[ScenarioKind]Scenario{
	ScenarioEmergency: {
		Kind:                ScenarioEmergency,
		BaseDurationSec:     180,
		LanePattern:         "directional",
		PriorityRule:        "ambulance-direction",
		Mode:                ModeWave,
		PreClearanceLeadSec: 30,
	},
	ScenarioCongestion: {
		Kind:                ScenarioCongestion,
		BaseDurationSec:     90,
		LanePattern:         "alternating",
		PriorityRule:        "balanced-flow",
		Mode:                ModeAlternating,
		PreClearanceLeadSec: 10,
	},
	ScenarioPeakHour: {
		Kind:                ScenarioPeakHour,
		BaseDurationSec:     120,
		LanePattern:         "adaptive",
		PriorityRule:        "main-corridor",
		Mode:                ModeSimultaneous,
		PreClearanceLeadSec: 15,
	},
	ScenarioNormal: {
		Kind:                ScenarioNormal,
		BaseDurationSec:     30,
		LanePattern:         "fixed",
		PriorityRule:        "round-robin",
		Mode:                ModeStandard,
		PreClearanceLeadSec: 0,
	},
}

// SelectScenario picks the clearance scenario for an intersection. A
// high-priority emergency always wins; heavy congestion outranks the
// peak-hour window; everything else runs the normal cycle.
func SelectScenario(now time.Time, state IntersectionState, emergency *EmergencyContext) Scenario {
	switch {
	case emergency != nil && emergency.Priority == PriorityHigh:
		return scenarioParams[ScenarioEmergency]
	case state.CongestionLevel == congestion.LevelHigh:
		return scenarioParams[ScenarioCongestion]
	case congestion.IsPeakHour(now):
		return scenarioParams[ScenarioPeakHour]
	default:
		return scenarioParams[ScenarioNormal]
	}
}
