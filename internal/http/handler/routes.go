package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"paperlib/internal/auth"
	"paperlib/internal/http/middleware"
	"paperlib/internal/proxy"
	"paperlib/internal/service"
)

// Pinger reports whether the paper store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the routes are built from.
// A nil Gate disables deletes; a nil SummaryLimiter leaves summarize unthrottled.
type Deps struct {
	Papers         service.PaperService
	Signer         *proxy.Signer
	Resolver       *proxy.Resolver
	Gate           *auth.Gate
	Pinger         Pinger
	SummaryLimiter *rate.Limiter
	Debug          map[string]bool
}

// RegisterRoutes attaches HTTP routes to the provided Fiber router.
func RegisterRoutes(r fiber.Router, d Deps) {
	r.Get("/health", HealthCheck(d.Pinger))
	r.Get("/healthz", LivenessProbe())
	r.Get("/debug", Debug(d.Debug))

	r.Get("/papers", ListPapers(d.Papers))
	r.Post("/upload", UploadPaper(d.Papers))
	r.Delete("/delete-paper", DeletePaper(d.Gate, d.Papers))
	r.Get("/get-summary", GetSummary(d.Papers))
	r.Get("/summarize", middleware.RateLimit(d.SummaryLimiter), Summarize(d.Papers))

	r.Get("/generate-upload-url", GenerateUploadURL(d.Signer))
	r.Get("/pdf-proxy", PDFProxy(d.Resolver))
}
