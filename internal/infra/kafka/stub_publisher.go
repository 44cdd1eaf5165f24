package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishPasswordResetRequested logs verify.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"masked_email":  event.MaskedEmail,
		"requested_at":  event.RequestedAt,
		"expires_at":    event.ExpiresAt,
		"request_count": event.RequestCount,
		"metadata":      event.Metadata,
	}
	p.logEvent("verify.password.reset_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordResetCompleted logs verify.password.reset_completed events.
func (p *StubPublisher) PublishPasswordResetCompleted(_ context.Context, event domain.PasswordResetCompletedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"completed_at": event.CompletedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("verify.password.reset_completed", event.UserID, event.CompletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
