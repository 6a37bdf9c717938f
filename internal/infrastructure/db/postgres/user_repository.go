package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	db      querier
	timeout time.Duration
}

func NewUserRepository(db querier, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &UserRepository{db: db, timeout: timeout}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query :=
		`INSERT INTO users (login, password_hash, fullname)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	created := *user
	err := r.db.QueryRowContext(ctx, query, user.Login, user.PasswordHash, user.FullName).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return nil, domain.ErrDuplicateUser
		}
		return nil, persistenceError("insert user", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.findOne(ctx, "find user by login",
		`SELECT id, login, password_hash, fullname, created_at FROM users
		 WHERE login = $1`, login)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "find user by id",
		`SELECT id, login, password_hash, fullname, created_at FROM users
		 WHERE id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		// a malformed uuid can never match a row
		if pgErrorCode(err) == codeInvalidText {
			return nil, domain.ErrUserNotFound
		}
		return nil, persistenceError(op, err)
	}
	return &u, nil
}
