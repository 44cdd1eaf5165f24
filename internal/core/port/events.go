package port

import (
	"context"

	"github.com/shriya-199/Prolance/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordResetCompleted(ctx context.Context, event domain.PasswordResetCompletedEvent) error
}
