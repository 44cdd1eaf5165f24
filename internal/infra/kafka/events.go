package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: envelopeMetadata{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishPasswordResetRequested publishes verify.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		MaskedEmail  string         `json:"masked_email"`
		RequestedAt  time.Time      `json:"requested_at"`
		ExpiresAt    time.Time      `json:"expires_at"`
		RequestCount int            `json:"request_count"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		MaskedEmail:  event.MaskedEmail,
		RequestedAt:  event.RequestedAt.UTC(),
		ExpiresAt:    event.ExpiresAt.UTC(),
		RequestCount: event.RequestCount,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "verify.password.reset_requested", event.UserID, event.RequestedAt, payload)
}

// PublishPasswordResetCompleted publishes verify.password.reset_completed events.
func (p *EventPublisher) PublishPasswordResetCompleted(ctx context.Context, event domain.PasswordResetCompletedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		CompletedAt time.Time      `json:"completed_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		CompletedAt: event.CompletedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "verify.password.reset_completed", event.UserID, event.CompletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
