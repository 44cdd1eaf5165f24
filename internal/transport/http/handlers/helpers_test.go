package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/repository"
	"github.com/shriya-199/Prolance/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	user, ok := r.users[identifier]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) SaveVerification(_ context.Context, id string, rec domain.VerificationRecord) error {
	for _, user := range r.users {
		if user.ID == id {
			user.Verification = rec
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubUserRepo) ResetPassword(_ context.Context, id string, hash string, _ time.Time) error {
	for _, user := range r.users {
		if user.ID == id {
			user.PasswordHash = hash
			user.Verification = domain.VerificationRecord{}
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubMailer struct {
	failWith error
	lastCode string
}

func (m *stubMailer) SendPasswordResetCode(_ context.Context, _, _, code string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.lastCode = code
	return nil
}

type stubChallengeStore struct {
	sessions map[string]domain.ChallengeSession
}

func newStubChallengeStore() *stubChallengeStore {
	return &stubChallengeStore{sessions: map[string]domain.ChallengeSession{}}
}

func (s *stubChallengeStore) Put(_ context.Context, session domain.ChallengeSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubChallengeStore) Get(_ context.Context, id string) (*domain.ChallengeSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *stubChallengeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *stubChallengeStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	evicted := 0
	for id, session := range s.sessions {
		if !session.CreatedAt.After(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate() (string, string, error) {
	return "data:image/png;base64,iVBORw0KGgo=", "aB3d", nil
}

func newResetService(repo *stubUserRepo, mailer *stubMailer) *usecase.PasswordResetService {
	return usecase.NewPasswordResetService(nil, repo, mailer, nil, nil, nil)
}

func performJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
	return payload
}
