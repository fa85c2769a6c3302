package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civicbridge/complaint-service/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	postgres     *persistence.Postgres
	redis        *persistence.Redis
	requireRedis bool
}

// NewHealthHandler returns a new handler instance. Redis only gates readiness
// when requireRedis is set, i.e. when the complaint lock depends on it.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, requireRedis bool) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, requireRedis: requireRedis}
}

// Root is the legacy liveness banner at GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"activeState": true, "error": false})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	switch err := h.postgres.Ping(ctx); {
	case errors.Is(err, persistence.ErrNotConfigured):
		depStatus["postgres"] = "memory"
	case err != nil:
		depStatus["postgres"] = err.Error()
		ready = false
	default:
		depStatus["postgres"] = "ok"
	}

	switch err := h.redis.Ping(ctx); {
	case err == nil:
		depStatus["redis"] = "ok"
	case errors.Is(err, persistence.ErrNotConfigured):
		depStatus["redis"] = "disabled"
		ready = ready && !h.requireRedis
	default:
		depStatus["redis"] = err.Error()
		ready = ready && !h.requireRedis
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":        "one or more dependencies unavailable",
		"code":         "DEPENDENCY_UNAVAILABLE",
		"dependencies": depStatus,
	})
}
