package ports

import (
	"context"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Login           string
	Password        string
	PasswordConfirm string
	FullName        string
}

// LoginInput carries a credential pair plus request metadata for auditing.
type LoginInput struct {
	Login    string
	Password string
	RemoteIP string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Authenticate verifies the credential pair. Rejections are *domain.AuthError.
	Authenticate(ctx context.Context, input LoginInput) (*domain.User, error)
	// Login authenticates and opens a session, returning its token.
	Login(ctx context.Context, input LoginInput) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
}

// PasswordHasher is the one-way salted hashing service.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A mismatch is (false, nil);
	// only a malformed hash produces an error wrapping domain.ErrHashFormat.
	Verify(plaintext, hash string) (bool, error)
}

// AuthAuditor accepts login attempts for the audit trail. Record must not block.
type AuthAuditor interface {
	Record(attempt domain.AuthAttempt)
}

// AuthAuditRepository persists login attempts.
type AuthAuditRepository interface {
	InsertAttempt(ctx context.Context, attempt domain.AuthAttempt) error
}
