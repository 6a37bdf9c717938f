package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenlibrary/catalog/internal/api/middleware"
	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
)

// CookieConfig describes the session cookie handed to browsers.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService    ports.AuthService
	productService ports.ProductService
	cookie         CookieConfig
}

func NewAuthHandler(authService ports.AuthService, productService ports.ProductService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, productService: productService, cookie: cookie}
}

// Register creates a new user account. It does not log the user in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  authResponse
// @Success      303   "Browser redirect to /login"
// @Failure      409   {object}  api.errorResponse
// @Failure      422   {object}  api.errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Login:           req.Login,
		Password:        req.Password,
		PasswordConfirm: req.Password2,
		FullName:        req.FullName,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "/login", authResponse{User: toUserResponse(user)})
}

// Login authenticates the credential pair and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Success      303   "Browser redirect to /"
// @Failure      401   {object}  api.errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Login:    req.Login,
		Password: req.Password,
		RemoteIP: c.RealIP(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationFailed) && middleware.WantsHTML(c.Request()) {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return err
	}

	c.SetCookie(h.sessionCookie(token, int(h.cookie.TTL.Seconds())))
	return respond(c, http.StatusOK, "/", authResponse{Token: token, User: toUserResponse(user)})
}

// Logout destroys the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Success      303   "Browser redirect to /"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.TokenFrom(c, h.cookie.Name)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie("", -1))
	if middleware.WantsHTML(c.Request()) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile returns the current user and the products they submitted.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200   {object}  profileResponse
// @Failure      401   {object}  api.errorResponse
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	products, err := h.productService.ListByOwner(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:     toUserResponse(user),
		Products: toProductResponses(products),
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
