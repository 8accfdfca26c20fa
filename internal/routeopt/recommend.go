package routeopt

import (
	"fmt"
	"time"

	"github.com/greenwave/greenwave/internal/congestion"
)

// signalSuggestionThreshold is the signal count above which a suggestion to
// request signal pre-emption is attached.
const signalSuggestionThreshold = 10

// buildRecommendations derives operator advisories from the winning route and
// the sampled conditions.
func buildRecommendations(now time.Time, best ScoredRoute, samples []congestion.Sample) []Recommendation {
	var recs []Recommendation

	if congestion.IsPeakHour(now) {
		recs = append(recs, Recommendation{
			Kind:     RecommendationWarning,
			Message:  "Peak-hour traffic in effect; expect slower progress on surface streets.",
			Priority: PriorityHigh,
		})
	}

	highPoints := 0
	for _, s := range samples {
		if s.Level == congestion.LevelHigh {
			highPoints++
		}
	}
	if highPoints > 0 {
		recs = append(recs, Recommendation{
			Kind:     RecommendationAlert,
			Message:  fmt.Sprintf("%d of %d sampled points report high congestion along this corridor.", highPoints, len(samples)),
			Priority: PriorityHigh,
		})
	}

	if best.SignalCount > signalSuggestionThreshold {
		recs = append(recs, Recommendation{
			Kind:     RecommendationSuggestion,
			Message:  fmt.Sprintf("Route passes %d signalized intersections; request signal pre-emption where available.", best.SignalCount),
			Priority: PriorityMedium,
		})
	}

	if best.Strategy == StrategyEmergency {
		recs = append(recs, Recommendation{
			Kind:     RecommendationCritical,
			Message:  "Emergency corridor selected; intersection clearance must be activated ahead of the vehicle.",
			Priority: PriorityCritical,
			Actions: []string{
				"activate intersection clearance along the corridor",
				"notify traffic control of the emergency transit",
				"hold cross-traffic at affected intersections",
			},
		})
	}

	return recs
}
