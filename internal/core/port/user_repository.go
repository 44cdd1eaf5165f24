package port

import (
	"context"
	"time"

	"github.com/shriya-199/Prolance/internal/core/domain"
)

// UserRepository exposes persistence behavior for user records.
type UserRepository interface {
	// GetByIdentifier resolves a user by email or username. Matching is
	// case-insensitive; implementations receive the identifier already
	// lower-cased.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// SaveVerification persists the inline verification fields of the record.
	SaveVerification(ctx context.Context, id string, rec domain.VerificationRecord) error
	// ResetPassword stores the new password hash and atomically returns the
	// verification fields to their rest state in the same write.
	ResetPassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
}
