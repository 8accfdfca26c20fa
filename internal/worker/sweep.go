package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/intersection"
	"github.com/greenwave/greenwave/pkg/geo"
)

// SweepJob predicts congestion across the corridor hotspots and refreshes
// the congestion level of monitored intersections.
type SweepJob struct {
	config        SweepConfig
	logger        zerolog.Logger
	predictor     *congestion.Predictor
	intersections *intersection.Service
	clock         clock.Clock

	metrics *SweepMetrics
}

// SweepMetrics tracks sweep job statistics.
type SweepMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalSweeps            int64
	PointsSwept            int64
	FailedPoints           int64
	HighCongestionHits     int64
	IntersectionsRefreshed int64

	// Timings
	LastSweepAt       time.Time
	LastSweepDuration time.Duration
	TotalDuration     time.Duration
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config        SweepConfig
	Logger        zerolog.Logger
	Predictor     *congestion.Predictor
	Intersections *intersection.Service
	Clock         clock.Clock
}

// NewSweepJob creates a new sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultSweepConfig()
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.System()
	}

	return &SweepJob{
		config:        config,
		logger:        cfg.Logger,
		predictor:     cfg.Predictor,
		intersections: cfg.Intersections,
		clock:         clk,
		metrics:       &SweepMetrics{},
	}
}

// SweepResult contains the result of a sweep operation.
type SweepResult struct {
	StartTime              time.Time
	EndTime                time.Time
	Duration               time.Duration
	TotalPoints            int
	Successful             int
	Failed                 int
	HighCongestion         int
	IntersectionsRefreshed int
	Errors                 []SweepError
}

// SweepError represents an error during a sweep.
type SweepError struct {
	Point geo.Point
	Error string
}

// Run executes the sweep job for all configured targets.
func (j *SweepJob) Run(ctx context.Context) *SweepResult {
	startTime := time.Now()
	result := &SweepResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting congestion sweep job")

	if j.config.SweepCongestion && j.predictor != nil {
		j.sweepHotspots(ctx, result)
	}

	if j.config.RefreshIntersections && j.intersections != nil {
		refreshed, err := j.intersections.RefreshCongestion(ctx)
		if err != nil {
			j.logger.Error().Err(err).Msg("failed to refresh monitored intersections")
		} else {
			result.IntersectionsRefreshed = refreshed
			atomic.AddInt64(&j.metrics.IntersectionsRefreshed, int64(refreshed))
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("high_congestion", result.HighCongestion).
		Int("intersections_refreshed", result.IntersectionsRefreshed).
		Msg("congestion sweep job completed")

	return result
}

type pointResult struct {
	point   geo.Point
	success bool
	high    bool
	errors  []SweepError
}

func (j *SweepJob) sweepHotspots(ctx context.Context, result *SweepResult) {
	points := j.config.AllPoints()

	pointsChan := make(chan geo.Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.sweepWorker(ctx, pointsChan, resultsChan)
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		if pr.high {
			result.HighCongestion++
		}
		result.Errors = append(result.Errors, pr.errors...)
	}
}

func (j *SweepJob) sweepWorker(ctx context.Context, points <-chan geo.Point, results chan<- pointResult) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.sweepPoint(point)
		}
	}
}

func (j *SweepJob) sweepPoint(point geo.Point) pointResult {
	result := pointResult{
		point:   point,
		success: true,
	}

	sample, err := j.predictor.Predict(j.clock.Now(), point)
	if err != nil {
		result.success = false
		result.errors = append(result.errors, SweepError{
			Point: point,
			Error: err.Error(),
		})
		return result
	}

	atomic.AddInt64(&j.metrics.PointsSwept, 1)
	if sample.Level == congestion.LevelHigh {
		result.high = true
		atomic.AddInt64(&j.metrics.HighCongestionHits, 1)
		j.logger.Warn().
			Float64("lat", point.Lat).
			Float64("lng", point.Lng).
			Float64("score", sample.Score).
			Msg("high congestion at corridor hotspot")
	}

	return result
}

func (j *SweepJob) updateMetrics(result *SweepResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalSweeps++
	j.metrics.FailedPoints += int64(result.Failed)
	j.metrics.LastSweepAt = result.EndTime
	j.metrics.LastSweepDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *SweepJob) GetMetrics() SweepMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return SweepMetrics{
		TotalSweeps:            j.metrics.TotalSweeps,
		PointsSwept:            j.metrics.PointsSwept,
		FailedPoints:           j.metrics.FailedPoints,
		HighCongestionHits:     j.metrics.HighCongestionHits,
		IntersectionsRefreshed: j.metrics.IntersectionsRefreshed,
		LastSweepAt:            j.metrics.LastSweepAt,
		LastSweepDuration:      j.metrics.LastSweepDuration,
		TotalDuration:          j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *SweepJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_sweeps":            m.TotalSweeps,
		"points_swept":            m.PointsSwept,
		"failed_points":           m.FailedPoints,
		"high_congestion_hits":    m.HighCongestionHits,
		"intersections_refreshed": m.IntersectionsRefreshed,
		"last_sweep_at":           m.LastSweepAt,
		"last_sweep_duration":     m.LastSweepDuration.String(),
		"total_duration":          m.TotalDuration.String(),
	}
}
