package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/repository"
)

const (
	defaultChallengeTTL  = 10 * time.Minute
	defaultSweepInterval = time.Minute
)

var (
	// ErrChallengeNotFound indicates the id was never issued, already consumed, or swept.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrChallengeExpired indicates the session aged past the expiry window.
	ErrChallengeExpired = errors.New("challenge expired")
	// ErrChallengeIncorrect indicates the submitted answer does not match.
	ErrChallengeIncorrect = errors.New("challenge answer incorrect")
)

// CaptchaService hands out short-lived visual challenges and validates
// answers at most once per session. A consumed or swept id is permanently
// gone; a mismatched answer keeps the session alive for retries.
type CaptchaService struct {
	store     port.ChallengeStore
	generator port.ChallengeGenerator
	logger    *zap.Logger
	now       func() time.Time
	ttl       time.Duration
	sweepEach time.Duration
}

// ChallengeResult is handed to the client after challenge creation. The
// expected answer is never part of it.
type ChallengeResult struct {
	ID       string
	Rendered string
}

// NewCaptchaService constructs a CaptchaService.
func NewCaptchaService(store port.ChallengeStore, generator port.ChallengeGenerator, logger *zap.Logger) *CaptchaService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CaptchaService{
		store:     store,
		generator: generator,
		logger:    logger,
		now:       time.Now,
		ttl:       defaultChallengeTTL,
		sweepEach: defaultSweepInterval,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *CaptchaService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithTTL overrides the challenge expiry window.
func (s *CaptchaService) WithTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// WithSweepInterval overrides the background sweep cadence.
func (s *CaptchaService) WithSweepInterval(interval time.Duration) {
	if interval > 0 {
		s.sweepEach = interval
	}
}

// CreateChallenge renders a fresh challenge and stores its answer under an
// unguessable id.
func (s *CaptchaService) CreateChallenge(ctx context.Context) (*ChallengeResult, error) {
	rendered, answer, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate challenge: %w", err)
	}

	session := domain.ChallengeSession{
		ID:        uuid.NewString(),
		Answer:    answer,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	return &ChallengeResult{ID: session.ID, Rendered: rendered}, nil
}

// ValidateChallenge compares the trimmed answer against the stored one.
// Expiry discovered on access evicts the session immediately. A correct
// answer consumes the session; a wrong answer leaves it in place so the
// client can retry until the session expires.
func (s *CaptchaService) ValidateChallenge(ctx context.Context, id, answer string) error {
	if id == "" {
		return ErrChallengeNotFound
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("load challenge: %w", err)
	}

	now := s.now().UTC()
	if session.ExpiredAt(now, s.ttl) {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("evict expired challenge failed", zap.String("challenge_id", id), zap.Error(err))
		}
		return ErrChallengeExpired
	}

	if strings.TrimSpace(answer) != session.Answer {
		return ErrChallengeIncorrect
	}

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("consume challenge: %w", err)
	}

	return nil
}

// RunSweeper evicts aged-out sessions on a fixed cadence until the context
// is cancelled. Each pass is short and idempotent, so cancellation mid-run
// needs no special handling.
func (s *CaptchaService) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEach)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := s.now().UTC().Add(-s.ttl)
			evicted, err := s.store.Sweep(ctx, cutoff)
			if err != nil {
				s.logger.Warn("challenge sweep failed", zap.Error(err))
				continue
			}
			if evicted > 0 {
				s.logger.Debug("challenge sweep evicted sessions", zap.Int("count", evicted))
			}
		}
	}
}
