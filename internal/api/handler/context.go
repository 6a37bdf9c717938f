package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenlibrary/catalog/internal/api/middleware"
	"github.com/greenlibrary/catalog/internal/core/domain"
)

// currentUser returns the user attached by the Session middleware. Handlers
// behind RequireUser can rely on it; a missing user there means the route was
// wired without the guard, so fail closed.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// respond redirects browsers to location and renders JSON for everything else.
func respond(c echo.Context, status int, location string, body any) error {
	if middleware.WantsHTML(c.Request()) {
		return c.Redirect(http.StatusSeeOther, location)
	}
	return c.JSON(status, body)
}
