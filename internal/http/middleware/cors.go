package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var (
	corsMethods = []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete, fiber.MethodOptions}
	corsHeaders = []string{fiber.HeaderContentType, fiber.HeaderAuthorization, fiber.HeaderRange}
	corsExpose  = []string{fiber.HeaderContentRange, fiber.HeaderAcceptRanges, fiber.HeaderContentLength, fiber.HeaderContentDisposition}
)

// CORS lets the browser frontend call every route from any origin,
// including range requests against the proxy.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  strings.Join(corsMethods, ","),
		AllowHeaders:  strings.Join(corsHeaders, ","),
		ExposeHeaders: strings.Join(corsExpose, ","),
	})
}
