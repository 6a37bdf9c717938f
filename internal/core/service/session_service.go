package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
	"github.com/greenlibrary/catalog/internal/pkg/metrics"
)

// sessionClaims is the signed cookie payload. It carries the session id only;
// the user id lives server-side behind it.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionService implements ports.SessionManager on top of a SessionStore.
type SessionService struct {
	store  ports.SessionStore
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewSessionService(store ports.SessionStore, users ports.UserRepository, secret string, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		store:  store,
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// TTL is the lifetime of newly issued sessions.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// ToToken opens a session for user and returns the signed token. Only
// user.ID is written to the store.
func (s *SessionService) ToToken(ctx context.Context, user *domain.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", fmt.Errorf("open session: %w", domain.ErrUserNotFound)
	}

	sid := uuid.NewString()
	if err := s.store.Save(ctx, sid, user.ID, s.ttl); err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}

	now := s.now()
	claims := sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		_ = s.store.Delete(ctx, sid)
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// FromToken resolves token to the current persisted user.
func (s *SessionService) FromToken(ctx context.Context, token string) (*domain.User, error) {
	sid, err := s.sessionID(token)
	if err != nil {
		metrics.SessionResolutionsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrSessionNotFound
	}

	userID, err := s.store.UserID(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			metrics.SessionResolutionsTotal.WithLabelValues("expired").Inc()
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Warn().Str("user_id", userID).Msg("session points at a missing user, dropping it")
		if delErr := s.store.Delete(ctx, sid); delErr != nil {
			s.logger.Error().Err(delErr).Msg("failed to drop orphaned session")
		}
		metrics.SessionResolutionsTotal.WithLabelValues("orphaned").Inc()
		return nil, domain.ErrSessionNotFound
	}

	metrics.SessionResolutionsTotal.WithLabelValues("authenticated").Inc()
	return user, nil
}

// Destroy removes the mapping behind token. Tokens that do not verify have
// nothing to remove and are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	sid, err := s.sessionID(token)
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func (s *SessionService) sessionID(token string) (string, error) {
	if token == "" {
		return "", domain.ErrSessionNotFound
	}
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", domain.ErrSessionNotFound
	}
	return claims.SessionID, nil
}
