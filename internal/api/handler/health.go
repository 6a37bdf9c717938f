package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function such as (*sql.DB).PingContext to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
type HealthDependenciesHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

func NewHealthDependenciesHandler(deps map[string]Pinger) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: deps, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness pings every registered dependency.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
