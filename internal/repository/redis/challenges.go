package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/repository"
)

const (
	challengeAnswerField  = "answer"
	challengeCreatedField = "created_at"
)

// ChallengeStore keeps CAPTCHA sessions in Redis hashes so every replica
// can validate a challenge issued by any other. Keys carry a server-side
// TTL slightly above the logical expiry window; the sweep covers clients
// that never come back and deployments with TTL persistence disabled.
type ChallengeStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewChallengeStore constructs a Redis-backed challenge store. The ttl
// bounds how long an abandoned session can linger.
func NewChallengeStore(client *redis.Client, prefix string, ttl time.Duration) *ChallengeStore {
	if prefix == "" {
		prefix = "verify:captcha"
	}
	return &ChallengeStore{client: client, prefix: prefix, ttl: ttl}
}

// Put stores the session hash and applies the safety-net TTL.
func (s *ChallengeStore) Put(ctx context.Context, session domain.ChallengeSession) error {
	key := s.key(session.ID)

	fields := map[string]any{
		challengeAnswerField:  session.Answer,
		challengeCreatedField: session.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis hset challenge: %w", err)
	}

	if s.ttl > 0 {
		// Keep the key a little longer than the logical window so expiry
		// on access still observes the session and reports it as expired.
		if err := s.client.Expire(ctx, key, s.ttl+time.Minute).Err(); err != nil {
			return fmt.Errorf("redis expire challenge: %w", err)
		}
	}

	return nil
}

// Get loads the session for the id or reports repository.ErrNotFound.
func (s *ChallengeStore) Get(ctx context.Context, id string) (*domain.ChallengeSession, error) {
	values, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall challenge: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, values[challengeCreatedField])
	if err != nil {
		return nil, fmt.Errorf("parse challenge created_at: %w", err)
	}

	return &domain.ChallengeSession{
		ID:        id,
		Answer:    values[challengeAnswerField],
		CreatedAt: createdAt,
	}, nil
}

// Delete removes the session, reporting repository.ErrNotFound when absent.
func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del challenge: %w", err)
	}
	if removed == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Sweep scans the challenge keyspace and evicts sessions created at or
// before the cutoff.
func (s *ChallengeStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	var (
		cursor  uint64
		evicted int
	)

	pattern := s.prefix + ":*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return evicted, fmt.Errorf("redis scan challenges: %w", err)
		}

		for _, key := range keys {
			raw, err := s.client.HGet(ctx, key, challengeCreatedField).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return evicted, fmt.Errorf("redis hget challenge: %w", err)
			}

			createdAt, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				continue
			}
			if createdAt.After(cutoff) {
				continue
			}

			removed, err := s.client.Del(ctx, key).Result()
			if err != nil {
				return evicted, fmt.Errorf("redis del challenge: %w", err)
			}
			evicted += int(removed)
		}

		cursor = next
		if cursor == 0 {
			return evicted, nil
		}
	}
}

func (s *ChallengeStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

var _ port.ChallengeStore = (*ChallengeStore)(nil)
