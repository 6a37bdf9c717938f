package ports

import (
	"context"
	"time"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// SessionStore owns the server-side session id -> user id mapping.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// UserID returns domain.ErrSessionNotFound for unknown or expired ids.
	UserID(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionManager converts between an authenticated user and the opaque
// token held by the client.
type SessionManager interface {
	ToToken(ctx context.Context, user *domain.User) (string, error)
	// FromToken re-reads the user from the credential store on every call and
	// returns domain.ErrSessionNotFound for any token that does not resolve.
	FromToken(ctx context.Context, token string) (*domain.User, error)
	Destroy(ctx context.Context, token string) error
}
