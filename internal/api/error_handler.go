package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrDuplicateUser):
		return http.StatusConflict, domain.ErrDuplicateUser.Error()
	case errors.Is(err, domain.ErrAuthenticationFailed):
		// never reveal whether the login or the password was wrong
		return http.StatusUnauthorized, domain.ErrAuthenticationFailed.Error()
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, domain.ErrProductNotFound.Error()
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound, domain.ErrImageNotFound.Error()
	}

	// Hash format, persistence and anything unexpected: log the real cause,
	// return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
