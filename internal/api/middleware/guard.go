package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// RequireUser admits authenticated principals only. Browsers are redirected
// to loginPath; other clients get domain.ErrUnauthenticated. No session and a
// stale session are denied the same way. When the session store failed, the
// store error is returned instead so the client sees a server fault.
func RequireUser(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserFrom(c); ok {
				return next(c)
			}
			if err := SessionError(c); err != nil {
				return err
			}
			if WantsHTML(c.Request()) {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return domain.ErrUnauthenticated
		}
	}
}
