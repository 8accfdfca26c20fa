package routeopt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/pkg/geo"
)

// sampleCount congestion samples are taken along the straight start-end line,
// each projected sampleSpacing further into the future to approximate the
// vehicle's arrival time at that point.
const (
	sampleCount   = 10
	sampleSpacing = 3 * time.Minute
)

// LiveFeed supplies real-time congestion readings in [0, 1]. When configured,
// readings blend with the deterministic prediction; a feed failure never fails
// the optimization.
type LiveFeed interface {
	Reading(ctx context.Context, p geo.Point) (float64, error)
}

// ServiceConfig holds configuration for the optimizer service.
type ServiceConfig struct {
	// Predictor estimates congestion along the route.
	Predictor *congestion.Predictor

	// Logger for service operations.
	Logger zerolog.Logger

	// Clock is the time source. Defaults to the system clock.
	Clock clock.Clock

	// CacheTTL is how long an optimization result stays fresh (default: 5 minutes).
	CacheTTL time.Duration

	// CleanupInterval is how often expired entries are removed (default: 5 minutes).
	CleanupInterval time.Duration

	// LiveFeed is an optional real-time congestion source.
	LiveFeed LiveFeed
}

// Service optimizes routes with result caching. The cache is the only shared
// mutable state; concurrent misses for the same key may recompute, which is
// bounded-cost and last-writer-wins.
type Service struct {
	predictor       *congestion.Predictor
	logger          zerolog.Logger
	clock           clock.Clock
	cacheTTL        time.Duration
	cleanupInterval time.Duration
	liveFeed        LiveFeed

	mu          sync.RWMutex
	cache       map[string]*cachedResult
	lastCleanup time.Time
}

type cachedResult struct {
	result    *Result
	expiresAt time.Time
}

// NewService creates a new optimizer service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.System()
	}

	return &Service{
		predictor:       cfg.Predictor,
		logger:          cfg.Logger,
		clock:           clk,
		cacheTTL:        cacheTTL,
		cleanupInterval: cleanupInterval,
		liveFeed:        cfg.LiveFeed,
		cache:           make(map[string]*cachedResult),
	}
}

// Optimize returns the best route and ranked alternatives for a request.
// Invalid coordinates are rejected; any other internal failure is converted
// into a degraded fallback result so route guidance never fails outright.
func (s *Service) Optimize(ctx context.Context, req Request) (*Result, error) {
	if err := req.Start.Validate(); err != nil {
		return nil, fmt.Errorf("start: %w", ErrInvalidCoordinates)
	}
	if err := req.End.Validate(); err != nil {
		return nil, fmt.Errorf("end: %w", ErrInvalidCoordinates)
	}
	if req.EmergencyLevel == "" {
		req.EmergencyLevel = EmergencyNormal
	}

	key := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.clock.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", key).
			Msg("cache hit for route optimization")
		return cached.result, nil
	}
	s.mu.RUnlock()

	return s.computeAndCache(ctx, req, key), nil
}

// computeAndCache recomputes an optimization under the write lock and stores
// the result. A double-check prevents redundant recomputation under races.
func (s *Service) computeAndCache(ctx context.Context, req Request, key string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[key]; ok && s.clock.Now().Before(cached.expiresAt) {
		s.logger.Debug().
			Str("cache_key", key).
			Msg("cache hit after double-check")
		return cached.result
	}

	result := s.computeSafe(ctx, req)

	s.cache[key] = &cachedResult{
		result:    result,
		expiresAt: result.ComputedAt.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", key).
		Str("best_strategy", string(result.BestRoute.Strategy)).
		Float64("best_score", result.BestRoute.Score).
		Bool("degraded", result.Degraded).
		Msg("cached optimization result")

	s.cleanupIfNeeded()

	return result
}

// computeSafe runs the optimization pipeline, recovering any failure into the
// fixed fallback result.
func (s *Service) computeSafe(ctx context.Context, req Request) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Msg("optimization failed, serving fallback route")
			result = s.fallbackResult(req)
		}
	}()

	computed, err := s.compute(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("start_lat", req.Start.Lat).
			Float64("start_lng", req.Start.Lng).
			Float64("end_lat", req.End.Lat).
			Float64("end_lng", req.End.Lng).
			Msg("optimization failed, serving fallback route")
		return s.fallbackResult(req)
	}
	return computed
}

func (s *Service) compute(ctx context.Context, req Request) (*Result, error) {
	now := s.clock.Now()

	samples, err := s.sampleCongestion(ctx, now, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	candidates, err := Generate(req.Start, req.End, samples)
	if err != nil {
		return nil, err
	}

	best, alternatives := rank(candidates, req.EmergencyLevel)

	return &Result{
		BestRoute:       best,
		Alternatives:    alternatives,
		Recommendations: buildRecommendations(now, best, samples),
		Samples:         samples,
		Confidence:      resultConfidence(samples, best, now),
		ComputedAt:      now,
	}, nil
}

// sampleCongestion predicts congestion at evenly-spaced points along the
// straight start-end line, each offset further into the future.
func (s *Service) sampleCongestion(ctx context.Context, now time.Time, start, end geo.Point) ([]congestion.Sample, error) {
	samples := make([]congestion.Sample, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		point := geo.Lerp(start, end, float64(i)/float64(sampleCount-1))
		at := now.Add(time.Duration(i) * sampleSpacing)

		sample, err := s.predictor.Predict(at, point)
		if err != nil {
			return nil, err
		}

		if s.liveFeed != nil {
			sample = s.blendLiveReading(ctx, sample)
		}

		samples = append(samples, sample)
	}
	return samples, nil
}

// Blend ratio between the deterministic prediction and a live reading.
const liveBlendWeight = 0.4

func (s *Service) blendLiveReading(ctx context.Context, sample congestion.Sample) congestion.Sample {
	reading, err := s.liveFeed.Reading(ctx, sample.Location)
	if err != nil {
		s.logger.Debug().Err(err).
			Float64("lat", sample.Location.Lat).
			Float64("lng", sample.Location.Lng).
			Msg("live feed unavailable, using prediction alone")
		return sample
	}

	blended := sample
	blended.Score = sample.Score*(1-liveBlendWeight) + reading*liveBlendWeight
	blended.Level = levelForBlended(blended.Score)
	blended.Factors = append(append([]string(nil), sample.Factors...), "live_feed")
	return blended
}

func levelForBlended(score float64) congestion.Level {
	switch {
	case score >= 0.7:
		return congestion.LevelHigh
	case score > 0.4:
		return congestion.LevelMedium
	default:
		return congestion.LevelLow
	}
}

// fallbackResult is the fixed degraded response: a direct two-point route at
// the balanced speed with an advisory note. It must never fail.
func (s *Service) fallbackResult(req Request) *Result {
	now := s.clock.Now()
	distance := geo.Haversine(req.Start, req.End)

	fallback := Candidate{
		ID:            "rte_fallback",
		Name:          "Direct route (degraded)",
		Strategy:      StrategyBalanced,
		Geometry:      []geo.Point{req.Start, req.End},
		DistanceKm:    distance,
		ETAMinutes:    distance / 45 * 60,
		Traffic:       congestion.LevelMedium,
		PriorityClass: "balanced",
	}

	return &Result{
		BestRoute: ScoredRoute{Candidate: fallback, Score: 50},
		Recommendations: []Recommendation{{
			Kind:     RecommendationInfo,
			Message:  "Route guidance is degraded; verify conditions before committing to this route.",
			Priority: PriorityMedium,
		}},
		Confidence: 0.5,
		Degraded:   true,
		ComputedAt: now,
	}
}

// cacheKey canonicalizes the start/end pair. Emergency level is deliberately
// not part of the key: repeated requests for the same pair reuse the result.
func (s *Service) cacheKey(req Request) string {
	return fmt.Sprintf("%.6f,%.6f:%.6f,%.6f",
		req.Start.Lat, req.Start.Lng,
		req.End.Lat, req.End.Lng,
	)
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
// Caller must hold the write lock.
func (s *Service) cleanupIfNeeded() {
	now := s.clock.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.expiresAt) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired optimization cache entries")
	}
}

// InvalidateCache clears all cached results.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedResult)
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
	}
}
