package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/pkg/models"
)

const (
	RecommendationGeneratedEvent = "recommendation.generated"
	DefaultRecommendationsTopic  = "meal-recommendations"

	publishTimeout = 10 * time.Second
)

// RecommendationEvent is published after every successful recommendation
// run. It carries ids and totals only, never the full profile.
type RecommendationEvent struct {
	ID            uuid.UUID   `json:"id"`
	Goal          models.Goal `json:"goal"`
	MealCount     int         `json:"meal_count"`
	ItemIDs       []string    `json:"item_ids"`
	Fallback      bool        `json:"fallback"`
	Relaxed       []string    `json:"relaxed_constraints,omitempty"`
	TotalCalories float64     `json:"total_calories"`
	TotalPrice    float64     `json:"total_price"`
	Timestamp     time.Time   `json:"timestamp"`
}

func NewRecommendationEvent(id uuid.UUID, profile *models.UserProfile, rec *models.Recommendation, at time.Time) RecommendationEvent {
	items := rec.Items()
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	return RecommendationEvent{
		ID:            id,
		Goal:          profile.Goal,
		MealCount:     profile.MealCount,
		ItemIDs:       ids,
		Fallback:      rec.Fallback,
		Relaxed:       rec.Relaxed,
		TotalCalories: rec.Summary.Calories.Actual,
		TotalPrice:    rec.Summary.Budget.Actual,
		Timestamp:     at,
	}
}

// MessageWriter is the part of kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher writes recommendation events to Kafka. Without brokers it
// is a no-op.
type EventPublisher struct {
	writer MessageWriter
	topic  string
	logger *logrus.Logger
}

func NewEventPublisher(cfg *config.Config, logger *logrus.Logger) *EventPublisher {
	topic := cfg.Kafka.Topics.Recommendations
	if topic == "" {
		topic = DefaultRecommendationsTopic
	}

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("No Kafka brokers configured, recommendation events disabled")
		return &EventPublisher{topic: topic, logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by goal
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: cfg.Kafka.BatchTimeout,
		BatchSize:    100,
	}

	return NewEventPublisherWithWriter(writer, topic, logger)
}

func NewEventPublisherWithWriter(writer MessageWriter, topic string, logger *logrus.Logger) *EventPublisher {
	return &EventPublisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

func (p *EventPublisher) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *EventPublisher) PublishRecommendation(ctx context.Context, event RecommendationEvent) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Goal),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(RecommendationGeneratedEvent)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithError(err).WithField("event_id", event.ID).Error("Failed to publish recommendation event")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"topic":    p.topic,
		"items":    len(event.ItemIDs),
	}).Debug("Recommendation event published")

	return nil
}

func (p *EventPublisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}
