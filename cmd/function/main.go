// Command function serves the paper API and the bucket ingestion trigger as
// Cloud Functions. Both entry points share one lazily built application.
package main

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"paperlib/internal/app"
	"paperlib/internal/config"
	"paperlib/internal/http/server"
	"paperlib/internal/logging"
)

var (
	once     sync.Once
	initErr  error
	instance *app.App
	httpFn   http.HandlerFunc
	log      zerolog.Logger
)

func init() {
	functions.HTTP("PaperAPI", handlePaperAPI)
	functions.CloudEvent("IngestObject", ingestObject)
}

func setup() {
	once.Do(func() {
		cfg := config.Load()
		log = logging.New(cfg.Log)

		instance, initErr = app.Build(context.Background(), cfg, log)
		if initErr != nil {
			log.Error().Err(initErr).Msg("application initialization failed")
			return
		}
		srv, err := server.New(instance, log, server.Options{})
		if err != nil {
			initErr = err
			log.Error().Err(err).Msg("http server initialization failed")
			return
		}
		httpFn = adaptor.FiberApp(srv)
	})
}

func handlePaperAPI(w http.ResponseWriter, r *http.Request) {
	setup()
	if initErr != nil {
		http.Error(w, `{"error":"service unavailable","code":"SERVICE_UNAVAILABLE"}`, http.StatusServiceUnavailable)
		return
	}
	httpFn(w, r)
}

func ingestObject(ctx context.Context, e cloudevents.Event) error {
	setup()
	if initErr != nil {
		return initErr
	}
	return instance.Ingester().HandleEvent(log.WithContext(ctx), e)
}

// main runs the functions locally. FUNCTION_TARGET picks the entry point.
func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("funcframework start")
	}
}
