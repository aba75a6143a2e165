package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ishemalink/internal/auth/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemorySessionStore
	ctx   context.Context
	now   time.Time
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) newSession() *models.Session {
	return &models.Session{
		ID:          id.SessionID(uuid.New()),
		Key:         uuid.NewString(),
		UserID:      id.UserID(uuid.New()),
		DeviceLabel: "Chrome on Linux",
		CreatedAt:   s.now,
		ExpiresAt:   s.now.Add(time.Hour),
		LastSeenAt:  s.now,
	}
}

func (s *SessionStoreSuite) TestSessionLookup() {
	s.Run("returns stored session when found", func() {
		session := s.newSession()
		s.Require().NoError(s.store.Create(s.ctx, session))

		found, err := s.store.FindByKey(s.ctx, session.Key, s.now)
		s.Require().NoError(err)
		s.Equal(session, found)
	})

	s.Run("returns ErrNotFound when session does not exist", func() {
		_, err := s.store.FindByKey(s.ctx, "missing", s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired session is reported and dropped", func() {
		session := s.newSession()
		s.Require().NoError(s.store.Create(s.ctx, session))

		_, err := s.store.FindByKey(s.ctx, session.Key, s.now.Add(2*time.Hour))
		s.Require().ErrorIs(err, ErrSessionExpired)

		_, err = s.store.FindByKey(s.ctx, session.Key, s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate key is rejected", func() {
		session := s.newSession()
		s.Require().NoError(s.store.Create(s.ctx, session))
		s.Require().ErrorIs(s.store.Create(s.ctx, session), sentinel.ErrAlreadyUsed)
	})
}

func (s *SessionStoreSuite) TestTouchIsMonotonic() {
	session := s.newSession()
	s.Require().NoError(s.store.Create(s.ctx, session))

	s.Require().NoError(s.store.Touch(s.ctx, session.Key, s.now.Add(10*time.Minute)))
	s.Require().NoError(s.store.Touch(s.ctx, session.Key, s.now.Add(5*time.Minute)))

	found, err := s.store.FindByKey(s.ctx, session.Key, s.now)
	s.Require().NoError(err)
	s.Equal(s.now.Add(10*time.Minute), found.LastSeenAt)
	s.Equal(session.ExpiresAt, found.ExpiresAt)
}

func (s *SessionStoreSuite) TestDeleteIsIdempotent() {
	session := s.newSession()
	s.Require().NoError(s.store.Create(s.ctx, session))
	s.Require().NoError(s.store.Delete(s.ctx, session.Key))
	s.Require().NoError(s.store.Delete(s.ctx, session.Key))

	_, err := s.store.FindByKey(s.ctx, session.Key, s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
