// Package server assembles the Fiber application shared by the standalone API
// and the Cloud Functions entry point.
package server

import (
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"paperlib/docs"
	"paperlib/internal/app"
	handlers "paperlib/internal/http/handler"
	"paperlib/internal/http/middleware"
)

// BodyLimit bounds request bodies. Uploads are streamed to object storage but
// fasthttp buffers the multipart body first.
const BodyLimit = 64 << 20

// Options tune New. A nil Registry uses the default Prometheus registry.
type Options struct {
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// New returns a Fiber app with the global middleware chain and every route mounted.
func New(a *app.App, log zerolog.Logger, opts Options) (*fiber.App, error) {
	reg, gatherer := opts.Registry, opts.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	server := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(a.Config.IsProduction()),
		BodyLimit:             BodyLimit,
		DisableStartupMessage: true,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	// Register global middleware
	server.Use(otelfiber.Middleware())
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(log))
	server.Use(promMiddleware.Handler())
	server.Use(middleware.CORS())

	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(server, a.Routes())
	return server, nil
}
