package ports

import (
	"context"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// UserRepository defines the persistence operations for users.
//
// FindByLogin and FindByID return domain.ErrUserNotFound when no row matches,
// Create returns domain.ErrDuplicateUser on a login collision. Any other
// storage failure wraps domain.ErrPersistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
