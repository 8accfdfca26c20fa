package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/intersection"
)

var _ intersection.EventPublisher = (*ClearanceEventPublisher)(nil)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	sweepJob         *SweepJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	SweepJob         *SweepJob
	Logger           zerolog.Logger
}

// SweepMessage represents a congestion sweep job message.
type SweepMessage struct {
	JobType   string `json:"job_type"`
	SweepAll  bool   `json:"sweep_all,omitempty"`
	CheckOnly bool   `json:"check_only,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		sweepJob:         cfg.SweepJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	// Parse message.
	var sweepMsg SweepMessage
	if err := json.Unmarshal(msg.Data, &sweepMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	// Handle based on job type.
	var err error
	switch sweepMsg.JobType {
	case "congestion_sweep":
		err = h.handleCongestionSweep(ctx, sweepMsg)
	case "health_check":
		err = h.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", sweepMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", sweepMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleCongestionSweep(ctx context.Context, msg SweepMessage) error {
	h.logger.Info().
		Bool("sweep_all", msg.SweepAll).
		Msg("starting congestion sweep")

	result := h.sweepJob.Run(ctx)

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("total_points", result.TotalPoints).
		Msg("congestion sweep completed")

	// Consider it successful if more than half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many sweep failures: %d/%d", result.Failed, result.TotalPoints)
	}

	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	// Sweep a single point to verify the predictor pipeline.
	singlePointConfig := SweepConfig{
		Targets: []SweepTarget{
			{
				Name:     "health-check",
				Priority: 1,
				Points:   DefaultSweepTargets()[0].Points[:1],
			},
		},
		Concurrency:          1,
		Timeout:              10 * time.Second,
		SweepCongestion:      true,
		RefreshIntersections: false, // Skip the registry for health checks
	}

	healthCheckJob := NewSweepJob(SweepJobConfig{
		Config:    singlePointConfig,
		Logger:    h.logger,
		Predictor: h.sweepJob.predictor,
		Clock:     h.sweepJob.clock,
	})

	result := healthCheckJob.Run(ctx)

	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}

// ClearanceEventPublisher publishes clearance plan events to a Pub/Sub topic
// so downstream signal controllers can react.
type ClearanceEventPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// ClearanceEventPublisherConfig holds configuration for the event publisher.
type ClearanceEventPublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// clearancePlannedEvent is the wire form of a clearance plan event.
type clearancePlannedEvent struct {
	EventType       string         `json:"event_type"`
	PlanID          string         `json:"plan_id"`
	IntersectionID  string         `json:"intersection_id"`
	Scenario        string         `json:"scenario"`
	TotalTimeSec    int            `json:"total_time_sec"`
	EfficiencyScore float64        `json:"efficiency_score"`
	Plan            clearance.Plan `json:"plan"`
}

// NewClearanceEventPublisher creates a new clearance event publisher.
func NewClearanceEventPublisher(ctx context.Context, cfg ClearanceEventPublisherConfig) (*ClearanceEventPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &ClearanceEventPublisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// PublishClearancePlanned publishes a clearance plan to the topic.
func (p *ClearanceEventPublisher) PublishClearancePlanned(ctx context.Context, plan clearance.Plan) error {
	event := clearancePlannedEvent{
		EventType:       "clearance_planned",
		PlanID:          plan.ID,
		IntersectionID:  plan.IntersectionID,
		Scenario:        string(plan.Scenario.Kind),
		TotalTimeSec:    plan.TotalClearanceTimeSec,
		EfficiencyScore: plan.EfficiencyScore,
		Plan:            plan,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding clearance event: %w", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	var id string
	publish := func() error {
		result := p.publisher.Publish(ctx, &pubsub.Message{
			Data: data,
			Attributes: map[string]string{
				"event_type":      "clearance_planned",
				"intersection_id": plan.IntersectionID,
			},
		})

		var getErr error
		id, getErr = result.Get(ctx)
		return getErr
	}

	if err := backoff.Retry(publish, policy); err != nil {
		return fmt.Errorf("publishing clearance event: %w", err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("plan_id", plan.ID).
		Msg("published clearance event")

	return nil
}

// Close stops the publisher and closes the Pub/Sub client.
func (p *ClearanceEventPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
