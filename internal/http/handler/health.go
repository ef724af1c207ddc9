package handler

import (
	"context"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck checks store connectivity only. A nil pinger is always healthy.
//
// @Summary  Readiness probe
// @Tags     ops
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable", "")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Debug reports which settings are present, never their values.
//
// @Summary  Configuration presence check
// @Tags     ops
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /debug [get]
func Debug(present map[string]bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := fiber.Map{}
		for k, v := range present {
			body[k] = v
		}
		body["goVersion"] = runtime.Version()
		body["timestamp"] = time.Now().UTC().Format(isoMillis)
		return c.JSON(body)
	}
}
