package port

import (
	"context"
	"time"

	"github.com/shriya-199/Prolance/internal/core/domain"
)

// ChallengeStore owns the ephemeral CAPTCHA session table. Implementations
// must be safe for concurrent use; the default backing is a process-local
// map, swappable for a distributed cache without changing call sites.
type ChallengeStore interface {
	Put(ctx context.Context, session domain.ChallengeSession) error
	Get(ctx context.Context, id string) (*domain.ChallengeSession, error)
	Delete(ctx context.Context, id string) error
	// Sweep evicts every session created before the cutoff and returns the
	// number of evicted entries.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// ChallengeGenerator renders a visual challenge and its ground-truth answer.
// The rendered form is returned as a data URI suitable for direct embedding.
type ChallengeGenerator interface {
	Generate() (rendered string, answer string, err error)
}
