package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// BcryptHasher implements ports.PasswordHasher. Every Hash call draws a fresh
// salt; cost is the bcrypt work factor.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrValidation)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrHashFormat, err)
	}
}
