package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrBadPassword          = errors.New("bad password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrHashFormat           = errors.New("malformed password hash")
	ErrPersistence          = errors.New("persistence failure")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateUser        = errors.New("login already registered")
	ErrSessionNotFound      = errors.New("session not found")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrProductNotFound      = errors.New("product not found")
	ErrImageNotFound        = errors.New("product has no image")
)

// AuthError is returned for every rejected credential pair. Callers outside
// the core only see ErrAuthenticationFailed; Reason (ErrUserNotFound or
// ErrBadPassword) is reachable through errors.Is for internal logging.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string { return ErrAuthenticationFailed.Error() }

func (e *AuthError) Unwrap() error { return e.Reason }

func (e *AuthError) Is(target error) bool { return target == ErrAuthenticationFailed }
