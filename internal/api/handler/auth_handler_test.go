package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (string, *domain.User, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
	_, u, err := s.loginFn(ctx, in)
	return u, err
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (string, *domain.User, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

var testCookie = CookieConfig{Name: "catalog_session", TTL: time.Hour}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Login != "alice" || in.Password != "pw1" || in.PasswordConfirm != "pw1" || in.FullName != "Alice A" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u-1", Login: in.Login, FullName: in.FullName, PasswordHash: "secret-hash"}, nil
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	body := strings.NewReader(`{"login":"alice","password":"pw1","password2":"pw1","fullname":"Alice A"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatalf("password hash leaked in response: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["login"] != "alice" || user["fullname"] != "Alice A" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("registration must not set a session cookie")
	}
}

func TestAuthHandler_Register_BrowserRedirect(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return &domain.User{ID: "u-1", Login: in.Login}, nil
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	req := formRequest(http.MethodPost, "/register", url.Values{
		"login": {"alice"}, "password": {"pw1"}, "password2": {"pw1"}, "fullname": {"Alice A"},
	})
	req.Header.Set(echo.HeaderAccept, "text/html")
	rec := httptest.NewRecorder()

	if err := handler.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called with an incomplete form")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	req := formRequest(http.MethodPost, "/register", url.Values{"login": {"alice"}, "password": {"pw1"}})
	err := handler.Register(e.NewContext(req, httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "password2 is required") {
		t.Fatalf("expected form field name in message, got %q", err.Error())
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateUser
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	req := formRequest(http.MethodPost, "/register", url.Values{
		"login": {"bob"}, "password": {"pw"}, "password2": {"pw"}, "fullname": {"Bob"},
	})
	if err := handler.Register(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (string, *domain.User, error) {
			if in.Login != "alice" || in.Password != "pw1" {
				t.Fatalf("unexpected credentials: %+v", in)
			}
			if in.RemoteIP == "" {
				t.Fatalf("expected remote ip for audit")
			}
			return "signed-token", &domain.User{ID: "u-1", Login: "alice"}, nil
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	req := formRequest(http.MethodPost, "/login", url.Values{"login": {"alice"}, "password": {"pw1"}})
	rec := httptest.NewRecorder()
	if err := handler.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "catalog_session" || ck.Value != "signed-token" || !ck.HttpOnly || ck.MaxAge != 3600 || ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (string, *domain.User, error) {
			return "", nil, &domain.AuthError{Reason: domain.ErrBadPassword}
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	req := formRequest(http.MethodPost, "/login", url.Values{"login": {"alice"}, "password": {"nope"}})
	rec := httptest.NewRecorder()
	err := handler.Login(e.NewContext(req, rec))
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("rejected login must not set a cookie")
	}

	browser := formRequest(http.MethodPost, "/login", url.Values{"login": {"alice"}, "password": {"nope"}})
	browser.Header.Set(echo.HeaderAccept, "text/html")
	rec = httptest.NewRecorder()
	if err := handler.Login(e.NewContext(browser, rec)); err != nil {
		t.Fatalf("browser rejection should redirect, got %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected 303 to /login, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	e := newEcho()
	var destroyed string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			destroyed = token
			return nil
		},
	}
	handler := NewAuthHandler(stub, nil, testCookie)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "catalog_session", Value: "tok"})
	rec := httptest.NewRecorder()

	if err := handler.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if destroyed != "tok" {
		t.Fatalf("expected session tok destroyed, got %q", destroyed)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Fatalf("expected cleared cookie, got %+v", cookies)
	}
}
