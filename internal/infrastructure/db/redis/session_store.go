package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

const sessionPrefix = "session:"

// SessionStore maps opaque session ids to user ids.
// Key format: session:<sid> -> <user id>, expiring with the session TTL.
type SessionStore struct {
	client redis.UniversalClient
}

func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionPrefix+sessionID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// UserID returns domain.ErrSessionNotFound for unknown or expired sessions.
func (s *SessionStore) UserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, sessionPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrSessionNotFound
		}
		return "", fmt.Errorf("load session: %w: %w", domain.ErrPersistence, err)
	}
	return userID, nil
}

// Delete is idempotent.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Ping reports whether the store is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
