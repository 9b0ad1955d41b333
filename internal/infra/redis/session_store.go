package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-service/internal/domain"
)

const activeSessionKey = "trivia:active_game"

// SessionStore is a Redis-backed implementation of app.SessionStore.
// The session is kept as one JSON snapshot; every Set refreshes its TTL, so an
// abandoned quiz disappears ttl after the last write. ttl <= 0 keeps it forever.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context) (domain.Session, bool, error) {
	data, err := s.client.Get(ctx, activeSessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	if session.UserScores == nil {
		session.UserScores = make(map[string]domain.UserScore)
	}
	return session, true, nil
}

func (s *SessionStore) Set(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, activeSessionKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, activeSessionKey).Err()
}
