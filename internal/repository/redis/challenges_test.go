package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/repository"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestChallengeStore_PutGetDelete(t *testing.T) {
	_, client := newTestClient(t)
	store := NewChallengeStore(client, "verify:captcha", 10*time.Minute)
	ctx := context.Background()

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	session := domain.ChallengeSession{ID: "c-1", Answer: "aB3d", CreatedAt: created}

	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Answer != "aB3d" {
		t.Fatalf("expected answer aB3d, got %s", got.Answer)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created at %v, got %v", created, got.CreatedAt)
	}

	if err := store.Delete(ctx, "c-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(ctx, "c-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "c-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestChallengeStore_GetUnknown(t *testing.T) {
	_, client := newTestClient(t)
	store := NewChallengeStore(client, "verify:captcha", 10*time.Minute)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChallengeStore_Sweep(t *testing.T) {
	_, client := newTestClient(t)
	store := NewChallengeStore(client, "verify:captcha", 10*time.Minute)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	sessions := []domain.ChallengeSession{
		{ID: "old-1", Answer: "a", CreatedAt: base.Add(-15 * time.Minute)},
		{ID: "old-2", Answer: "b", CreatedAt: base.Add(-10 * time.Minute)},
		{ID: "live", Answer: "c", CreatedAt: base.Add(-5 * time.Minute)},
	}
	for _, session := range sessions {
		if err := store.Put(ctx, session); err != nil {
			t.Fatalf("Put %s: %v", session.ID, err)
		}
	}

	evicted, err := store.Sweep(ctx, base.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if evicted != 2 {
		t.Fatalf("expected 2 evictions, got %d", evicted)
	}

	if _, err := store.Get(ctx, "live"); err != nil {
		t.Fatalf("live session must survive the sweep: %v", err)
	}
	if _, err := store.Get(ctx, "old-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected old-1 swept, got %v", err)
	}
}

func TestChallengeStore_ServerSideTTL(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewChallengeStore(client, "verify:captcha", 10*time.Minute)
	ctx := context.Background()

	session := domain.ChallengeSession{ID: "c-ttl", Answer: "aB3d", CreatedAt: time.Now().UTC()}
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	// The safety-net TTL outlives the logical window by a minute.
	mr.FastForward(11 * time.Minute)
	if _, err := store.Get(ctx, "c-ttl"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected key expired server-side, got %v", err)
	}
}
