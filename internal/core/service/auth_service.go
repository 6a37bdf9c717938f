package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
	"github.com/greenlibrary/catalog/internal/pkg/metrics"
)

// dummyPassword is hashed once and verified against when a login is unknown,
// so an unknown login costs the same as a wrong password.
const dummyPassword = "catalog-timing-equalizer"

// AuthService implements registration and the login state machine
// (lookup, verify, success).
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	sessions ports.SessionManager
	auditor  ports.AuthAuditor
	logger   zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	sessions ports.SessionManager,
	auditor ports.AuthAuditor,
	logger zerolog.Logger,
) *AuthService {
	if auditor == nil {
		auditor = NopAuditor{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		auditor:  auditor,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register validates the form, hashes the password and stores the user.
// Nothing is written when validation fails.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	login := strings.TrimSpace(in.Login)
	fullName := strings.TrimSpace(in.FullName)

	switch {
	case login == "":
		return nil, fmt.Errorf("%w: login is required", domain.ErrValidation)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	case in.PasswordConfirm == "":
		return nil, fmt.Errorf("%w: password confirmation is required", domain.ErrValidation)
	case fullName == "":
		return nil, fmt.Errorf("%w: fullname is required", domain.ErrValidation)
	case in.Password != in.PasswordConfirm:
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		Login:        login,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.logger.Info().Str("user_id", created.ID).Str("login", created.Login).Msg("user registered")
	return created, nil
}

// Authenticate runs a single login attempt. Unknown login and wrong password
// both return a *domain.AuthError; a corrupt stored hash is a server fault and
// is returned as domain.ErrHashFormat.
func (s *AuthService) Authenticate(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
	attempt := domain.AuthAttempt{Login: in.Login, RemoteIP: in.RemoteIP, At: s.now()}

	user, err := s.users.FindByLogin(ctx, in.Login)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.equalizeTiming(in.Password)
		attempt.Outcome = domain.OutcomeUserNotFound
		s.finish(attempt)
		return nil, &domain.AuthError{Reason: domain.ErrUserNotFound}
	}
	attempt.UserID = user.ID

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		attempt.Outcome = domain.OutcomeHashError
		s.finish(attempt)
		return nil, err
	}
	if !ok {
		attempt.Outcome = domain.OutcomeBadPassword
		s.finish(attempt)
		return nil, &domain.AuthError{Reason: domain.ErrBadPassword}
	}

	attempt.Outcome = domain.OutcomeSuccess
	s.finish(attempt)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (string, *domain.User, error) {
	user, err := s.Authenticate(ctx, in)
	if err != nil {
		return "", nil, err
	}

	token, err := s.sessions.ToToken(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

func (s *AuthService) finish(attempt domain.AuthAttempt) {
	metrics.LoginAttemptsTotal.WithLabelValues(string(attempt.Outcome)).Inc()

	ev := s.logger.Info()
	if attempt.Outcome == domain.OutcomeHashError {
		ev = s.logger.Error()
	}
	ev.Str("login", attempt.Login).
		Str("user_id", attempt.UserID).
		Str("outcome", string(attempt.Outcome)).
		Str("remote_ip", attempt.RemoteIP).
		Msg("login attempt")

	s.auditor.Record(attempt)
}

func (s *AuthService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cannot prepare dummy hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// NopAuditor discards login attempts; it is used when no audit store is configured.
type NopAuditor struct{}

func (NopAuditor) Record(domain.AuthAttempt) {}
