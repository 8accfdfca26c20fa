package routeopt

import (
	"sort"
	"time"

	"github.com/greenwave/greenwave/internal/congestion"
)

// scoreWeights distributes 100 points across the five sub-scores. Mass shifts
// toward time, signals and traffic as urgency rises.
type scoreWeights struct {
	time        float64
	distance    float64
	signals     float64
	traffic     float64
	reliability float64
}

var weightsByLevel = map[EmergencyLevel]scoreWeights{
	EmergencyNormal: {time: 40, distance: 20, signals: 15, traffic: 15, reliability: 10},
	EmergencyMedium: {time: 45, distance: 10, signals: 18, traffic: 18, reliability: 9},
	EmergencyHigh:   {time: 50, distance: 5, signals: 20, traffic: 20, reliability: 5},
}

// Caps for "lower is better" sub-scores.
const (
	timeCapMinutes = 60
	distanceCapKm  = 50
	signalCap      = 20
)

// emergencyBonus multiplies the score when a high-urgency request meets the
// emergency strategy.
const emergencyBonus = 1.3

// trafficFactor maps a traffic level to its score multiplier. The fallthrough
// value covers a level outside the closed set, which indicates a programming
// error upstream; scoring degrades rather than panicking.
func trafficFactor(level congestion.Level) float64 {
	switch level {
	case congestion.LevelLow:
		return 1.0
	case congestion.LevelMedium:
		return 0.7
	case congestion.LevelHigh:
		return 0.4
	default:
		return 0.5
	}
}

// reliabilityFactor maps a strategy to its inherent reliability multiplier.
func reliabilityFactor(strategy Strategy) float64 {
	switch strategy {
	case StrategyHighway:
		return 0.9
	case StrategyCity:
		return 0.6
	case StrategyBalanced:
		return 0.8
	case StrategyEmergency:
		return 1.0
	case StrategyAlternative:
		return 0.7
	default:
		return 0.5
	}
}

// trafficPenalty scales the whole score down for congested candidates.
func trafficPenalty(level congestion.Level) float64 {
	switch level {
	case congestion.LevelHigh:
		return 0.7
	case congestion.LevelMedium:
		return 0.85
	default:
		return 1.0
	}
}

// Score computes the 0-100 desirability of a candidate under the given
// urgency, together with the factors that shaped the score.
func Score(c Candidate, level EmergencyLevel) (float64, []string) {
	w, ok := weightsByLevel[level]
	if !ok {
		w = weightsByLevel[EmergencyNormal]
	}

	var factors []string

	score := cappedSubScore(c.ETAMinutes, timeCapMinutes, w.time)
	score += cappedSubScore(c.DistanceKm, distanceCapKm, w.distance)
	score += cappedSubScore(float64(c.SignalCount), signalCap, w.signals)
	score += trafficFactor(c.Traffic) * w.traffic
	score += reliabilityFactor(c.Strategy) * w.reliability

	if level == EmergencyHigh && c.Strategy == StrategyEmergency {
		score *= emergencyBonus
		factors = append(factors, "emergency priority bonus")
	}

	if penalty := trafficPenalty(c.Traffic); penalty < 1 {
		score *= penalty
		factors = append(factors, string(c.Traffic)+" traffic penalty")
	}

	return clamp(score, 0, 100), factors
}

// cappedSubScore rewards values below the cap proportionally, bottoming out
// at zero for values at or beyond the cap.
func cappedSubScore(value, limit, weight float64) float64 {
	if value >= limit {
		return 0
	}
	return (limit - value) / limit * weight
}

// rank scores every candidate, returning the best and up to three
// alternatives in descending score order. Ties keep generation order.
func rank(candidates []Candidate, level EmergencyLevel) (ScoredRoute, []ScoredRoute) {
	scored := make([]ScoredRoute, 0, len(candidates))
	for _, c := range candidates {
		score, factors := Score(c, level)
		scored = append(scored, ScoredRoute{Candidate: c, Score: score, Factors: factors})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	alternatives := scored[1:]
	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}
	return scored[0], alternatives
}

// Confidence bounds for an optimization result.
const (
	confidenceFloor = 0.6
	confidenceCeil  = 0.95
	confidenceBase  = 0.8
)

// resultConfidence estimates how trustworthy a result is, from sample
// confidence, the winning strategy and the time of day.
func resultConfidence(samples []congestion.Sample, best ScoredRoute, at time.Time) float64 {
	confidence := confidenceBase

	if len(samples) > 0 {
		confident := 0
		for _, s := range samples {
			if s.Confidence > 0.7 {
				confident++
			}
		}
		confidence += float64(confident) / float64(len(samples)) * 0.1
	}

	if best.Strategy == StrategyEmergency {
		confidence += 0.05
	}

	confidence += timeOfDayFactor(at) * 0.05

	return clamp(confidence, confidenceFloor, confidenceCeil)
}

// timeOfDayFactor reflects how predictable traffic is at a given hour: high
// at night, lowest during peaks.
func timeOfDayFactor(at time.Time) float64 {
	hour := at.Hour()
	switch {
	case hour >= 22 || hour <= 5:
		return 0.9
	case congestion.IsPeakHour(at):
		return 0.5
	case hour >= 12 && hour <= 14:
		return 0.7
	default:
		return 0.8
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
