package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 when l has no token available.
// A nil limiter lets everything through.
func RateLimit(l *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l != nil && !l.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
