package session

import (
	"context"
	"sync"
	"time"

	"ishemalink/internal/auth/models"
	"ishemalink/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in a map. Expired sessions are dropped
// on read.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.Key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *session
	s.sessions[session.Key] = &cp
	return nil
}

func (s *InMemorySessionStore) FindByKey(_ context.Context, key string, now time.Time) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if session.IsExpired(now) {
		delete(s.sessions, key)
		return nil, ErrSessionExpired
	}
	cp := *session
	return &cp, nil
}

// Touch records activity without extending expiry.
func (s *InMemorySessionStore) Touch(_ context.Context, key string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	if seenAt.After(session.LastSeenAt) {
		session.LastSeenAt = seenAt
	}
	return nil
}

// Delete is idempotent.
func (s *InMemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}
