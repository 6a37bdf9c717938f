package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/greenlibrary/catalog/docs"
	"github.com/greenlibrary/catalog/internal/api/handler"
	"github.com/greenlibrary/catalog/internal/api/middleware"
	"github.com/greenlibrary/catalog/internal/core/ports"
)

const loginPath = "/login"

// Dependencies collects everything the HTTP layer needs.
type Dependencies struct {
	Auth     ports.AuthService
	Products ports.ProductService
	Sessions middleware.SessionResolver
	Cookie   handler.CookieConfig

	MaxUploadBytes int64
	Checkers       map[string]handler.Pinger
	Logger         zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. When nil, a
	// private registry is used.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.Registerer == nil || deps.Gatherer == nil {
		reg := prometheus.NewRegistry()
		deps.Registerer, deps.Gatherer = reg, reg
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "catalog",
		Registerer: deps.Registerer,
	}))
	e.Use(middleware.Session(deps.Sessions, deps.Cookie.Name, deps.Logger))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Products, deps.Cookie)
	productHandler := handler.NewProductHandler(deps.Products, deps.MaxUploadBytes)
	requireUser := middleware.RequireUser(loginPath)

	// --- Public routes ---
	e.GET("/", productHandler.List)
	e.GET("/products", productHandler.List)
	e.GET("/products/:id/image", productHandler.Image)
	e.POST("/register", authHandler.Register)
	e.POST(loginPath, authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	// --- Guarded routes ---
	e.GET("/profile", authHandler.Profile, requireUser)
	e.POST("/products", productHandler.Submit, requireUser, bodyLimit(deps.MaxUploadBytes))

	// --- Health probes, metrics and docs ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checkers)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// bodyLimit caps the request body. A small allowance covers the multipart
// envelope around the image.
func bodyLimit(maxUpload int64) echo.MiddlewareFunc {
	const envelope = 64 << 10
	if maxUpload <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomiddleware.BodyLimit(fmt.Sprintf("%dB", maxUpload+envelope))
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
