package memory

import (
	"context"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
// A session expires ttl after its last Set; ttl <= 0 disables expiry.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu        sync.RWMutex
	session   *domain.Session
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock allows tests to drive expiry.
func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{ttl: ttl, clock: clock}
}

func (s *SessionStore) Get(_ context.Context) (domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.expiredLocked() {
		return domain.Session{}, false, nil
	}
	return s.session.Clone(), true, nil
}

func (s *SessionStore) Set(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := session.Clone()
	s.session = &stored
	if s.ttl > 0 {
		s.expiresAt = s.clock().Add(s.ttl)
	}
	return nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *SessionStore) expiredLocked() bool {
	return s.ttl > 0 && !s.clock().Before(s.expiresAt)
}
