package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/repository"
)

type challengeStoreMock struct {
	mu       sync.Mutex
	sessions map[string]domain.ChallengeSession
}

func newChallengeStoreMock() *challengeStoreMock {
	return &challengeStoreMock{sessions: map[string]domain.ChallengeSession{}}
}

func (m *challengeStoreMock) Put(_ context.Context, session domain.ChallengeSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *challengeStoreMock) Get(_ context.Context, id string) (*domain.ChallengeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (m *challengeStoreMock) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *challengeStoreMock) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, session := range m.sessions {
		if !session.CreatedAt.After(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

func (m *challengeStoreMock) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type generatorMock struct {
	rendered string
	answer   string
	err      error
}

func (g *generatorMock) Generate() (string, string, error) {
	if g.err != nil {
		return "", "", g.err
	}
	return g.rendered, g.answer, nil
}

func newCaptchaFixture(answer string) (*CaptchaService, *challengeStoreMock) {
	store := newChallengeStoreMock()
	gen := &generatorMock{rendered: "data:image/png;base64,iVBORw0KGgo=", answer: answer}
	svc := NewCaptchaService(store, gen, nil)
	return svc, store
}

func TestCaptchaService_CreateChallenge(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, store := newCaptchaFixture("aB3d")
	svc.WithClock(func() time.Time { return fixed })

	result, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("CreateChallenge returned error: %v", err)
	}
	if result.ID == "" {
		t.Fatalf("expected a challenge id")
	}
	if result.Rendered != "data:image/png;base64,iVBORw0KGgo=" {
		t.Fatalf("expected rendered image passthrough, got %s", result.Rendered)
	}

	session, err := store.Get(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("expected stored session: %v", err)
	}
	if session.Answer != "aB3d" {
		t.Fatalf("expected stored answer aB3d, got %s", session.Answer)
	}
	if !session.CreatedAt.Equal(fixed) {
		t.Fatalf("expected creation at %v, got %v", fixed, session.CreatedAt)
	}
}

func TestCaptchaService_CreateChallenge_UniqueIDs(t *testing.T) {
	svc, _ := newCaptchaFixture("aB3d")

	first, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("challenge ids must be unique, both were %s", first.ID)
	}
}

func TestCaptchaService_ValidateChallenge_ConsumesOnSuccess(t *testing.T) {
	svc, store := newCaptchaFixture("aB3d")
	result, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.ValidateChallenge(context.Background(), result.ID, "aB3d"); err != nil {
		t.Fatalf("expected successful validation, got %v", err)
	}
	if store.len() != 0 {
		t.Fatalf("expected session consumed on success")
	}
	if err := svc.ValidateChallenge(context.Background(), result.ID, "aB3d"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("replay must fail with ErrChallengeNotFound, got %v", err)
	}
}

func TestCaptchaService_ValidateChallenge_WrongAnswerKeepsSession(t *testing.T) {
	svc, store := newCaptchaFixture("aB3d")
	result, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.ValidateChallenge(context.Background(), result.ID, "xxxx"); !errors.Is(err, ErrChallengeIncorrect) {
		t.Fatalf("expected ErrChallengeIncorrect, got %v", err)
	}
	if store.len() != 1 {
		t.Fatalf("mismatch must keep the session for retry")
	}
	if err := svc.ValidateChallenge(context.Background(), result.ID, "aB3d"); err != nil {
		t.Fatalf("retry with correct answer failed: %v", err)
	}
}

func TestCaptchaService_ValidateChallenge_AnswerMatching(t *testing.T) {
	svc, _ := newCaptchaFixture("aB3d")
	result, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Case differences are mismatches; surrounding whitespace is not.
	if err := svc.ValidateChallenge(context.Background(), result.ID, "ab3d"); !errors.Is(err, ErrChallengeIncorrect) {
		t.Fatalf("expected case-sensitive mismatch, got %v", err)
	}
	if err := svc.ValidateChallenge(context.Background(), result.ID, "  aB3d \n"); err != nil {
		t.Fatalf("expected trimmed answer to match, got %v", err)
	}
}

func TestCaptchaService_ValidateChallenge_ExpiryOnAccess(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, store := newCaptchaFixture("aB3d")
	svc.WithClock(func() time.Time { return created })

	result, err := svc.CreateChallenge(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// One second shy of the window the session is still answerable.
	svc.WithClock(func() time.Time { return created.Add(10*time.Minute - time.Second) })
	if err := svc.ValidateChallenge(context.Background(), result.ID, "wrong"); !errors.Is(err, ErrChallengeIncorrect) {
		t.Fatalf("expected live session just before expiry, got %v", err)
	}

	// At exactly the window boundary the first access reports expiry and evicts.
	svc.WithClock(func() time.Time { return created.Add(10 * time.Minute) })
	if err := svc.ValidateChallenge(context.Background(), result.ID, "aB3d"); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired at the boundary, got %v", err)
	}
	if store.len() != 0 {
		t.Fatalf("expired session must be evicted on access")
	}
	if err := svc.ValidateChallenge(context.Background(), result.ID, "aB3d"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("subsequent access must report ErrChallengeNotFound, got %v", err)
	}
}

func TestCaptchaService_ValidateChallenge_UnknownID(t *testing.T) {
	svc, _ := newCaptchaFixture("aB3d")
	if err := svc.ValidateChallenge(context.Background(), "no-such-id", "aB3d"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
	if err := svc.ValidateChallenge(context.Background(), "", "aB3d"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound for empty id, got %v", err)
	}
}

func TestCaptchaService_RunSweeper_EvictsAgedSessions(t *testing.T) {
	store := newChallengeStoreMock()
	gen := &generatorMock{rendered: "data:image/png;base64,iVBORw0KGgo=", answer: "aB3d"}
	svc := NewCaptchaService(store, gen, nil)
	svc.WithTTL(time.Millisecond)
	svc.WithSweepInterval(5 * time.Millisecond)

	if _, err := svc.CreateChallenge(context.Background()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.RunSweeper(ctx)

	deadline := time.Now().Add(time.Second)
	for store.len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper did not evict the aged session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
