package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/repository"
)

// ChallengeStore keeps CAPTCHA sessions in a process-local map. It is the
// default backend for single-instance deployments; multi-instance setups
// use the Redis store so any replica can validate an issued challenge.
type ChallengeStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChallengeSession
}

// NewChallengeStore constructs an empty in-memory store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{sessions: make(map[string]domain.ChallengeSession)}
}

// Put stores the session under its id.
func (s *ChallengeStore) Put(_ context.Context, session domain.ChallengeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns the session for the id or repository.ErrNotFound.
func (s *ChallengeStore) Get(_ context.Context, id string) (*domain.ChallengeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

// Delete removes the session, reporting repository.ErrNotFound when absent.
func (s *ChallengeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep evicts every session created at or before the cutoff.
func (s *ChallengeStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		if !session.CreatedAt.After(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

// Len reports the number of live sessions.
func (s *ChallengeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ port.ChallengeStore = (*ChallengeStore)(nil)
