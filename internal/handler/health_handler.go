package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthCheck is one named dependency probed by the health endpoint.
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler creates a HealthHandler probing the database and any extra checks.
func NewHealthHandler(db Pinger, extra ...HealthCheck) *HealthHandler {
	checks := append([]HealthCheck{{Name: "database", Pinger: db}}, extra...)
	return &HealthHandler{checks: checks}
}

// Check pings every dependency. It returns 200 with {"status": "healthy"} when
// all respond and 503 listing the failed checks otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	checks := make(fiber.Map, len(h.checks))
	healthy := true
	for _, hc := range h.checks {
		if err := hc.Pinger.Ping(c.UserContext()); err != nil {
			log.Error().Err(err).Str("check", hc.Name).Msg("health check failed")
			checks[hc.Name] = "unreachable"
			healthy = false
			continue
		}
		checks[hc.Name] = "ok"
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"checks": checks,
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"checks": checks,
	})
}
