package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

const (
	principalKey    = "principal"
	sessionErrorKey = "session_error"
)

// SessionResolver turns a session token into the user behind it.
type SessionResolver interface {
	FromToken(ctx context.Context, token string) (*domain.User, error)
}

// Session resolves the request's session token into a domain.Principal and
// stores it on the context. Missing, invalid and stale sessions all become
// domain.Anonymous. A store failure also yields domain.Anonymous so public
// routes keep working; the error is kept for RequireUser to report.
func Session(resolver SessionResolver, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFrom(c, cookieName)
			if token == "" {
				SetPrincipal(c, domain.Anonymous{})
				return next(c)
			}

			user, err := resolver.FromToken(c.Request().Context(), token)
			switch {
			case err == nil:
				SetPrincipal(c, domain.Authenticated{User: user})
			case errors.Is(err, domain.ErrSessionNotFound):
				log.Debug().Str("path", c.Path()).Msg("stale session treated as anonymous")
				SetPrincipal(c, domain.Anonymous{})
			default:
				log.Warn().Err(err).Str("path", c.Path()).Msg("session store unavailable")
				SetPrincipal(c, domain.Anonymous{})
				c.Set(sessionErrorKey, err)
			}
			return next(c)
		}
	}
}

// TokenFrom reads the session token from the Authorization header, falling
// back to the session cookie.
func TokenFrom(c echo.Context, cookieName string) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// SessionError returns the store failure recorded by Session, if any.
func SessionError(c echo.Context) error {
	err, _ := c.Get(sessionErrorKey).(error)
	return err
}

// PrincipalFrom returns the principal set by Session, or domain.Anonymous when
// the middleware did not run.
func PrincipalFrom(c echo.Context) domain.Principal {
	if p, ok := c.Get(principalKey).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous{}
}

// UserFrom returns the authenticated user, if any.
func UserFrom(c echo.Context) (*domain.User, bool) {
	if auth, ok := PrincipalFrom(c).(domain.Authenticated); ok && auth.User != nil {
		return auth.User, true
	}
	return nil, false
}

// WantsHTML reports whether the client is a browser expecting a page rather
// than a JSON document.
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
