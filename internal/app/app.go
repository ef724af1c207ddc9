// Package app builds the service graph from configuration. It is the only place
// where backends are chosen and clients are opened.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	firestore "cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"paperlib/internal/auth"
	"paperlib/internal/config"
	"paperlib/internal/database"
	"paperlib/internal/database/migration"
	"paperlib/internal/http/handler"
	"paperlib/internal/ingest"
	"paperlib/internal/proxy"
	"paperlib/internal/repository"
	fsrepo "paperlib/internal/repository/firestore"
	pgrepo "paperlib/internal/repository/postgres"
	"paperlib/internal/service"
	"paperlib/internal/storage"
	"paperlib/internal/summary"
)

// App holds the wired components and the resources to release on shutdown.
type App struct {
	Config   *config.AppConfig
	Papers   service.PaperService
	Store    storage.Storage
	Signer   *proxy.Signer
	Resolver *proxy.Resolver
	Gate     *auth.Gate
	Pinger   handler.Pinger
	Limiter  *rate.Limiter

	closers []func() error
}

// ValidateBackends rejects unknown backend selectors before anything is opened.
func ValidateBackends(cfg *config.AppConfig) error {
	switch cfg.StoreBackend {
	case config.StorePostgres, config.StoreFirestore:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	switch cfg.StorageBackend {
	case config.StorageS3, config.StorageGCS:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if _, err := proxy.ParseMode(cfg.Proxy.Mode); err != nil {
		return err
	}
	return nil
}

// Build opens every client named by cfg. On error, whatever was already opened is closed.
func Build(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (a *App, err error) {
	if err := ValidateBackends(cfg); err != nil {
		return nil, err
	}
	ctx = log.WithContext(ctx)
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	creds := newCredentialCache(cfg.Firebase)

	repo, err := a.openRepository(ctx, cfg, creds, log)
	if err != nil {
		return nil, err
	}
	if a.Store, err = a.openStorage(ctx, cfg, creds); err != nil {
		return nil, err
	}

	a.Signer = proxy.NewSigner(a.Store, time.Duration(cfg.Proxy.URLExpirySec)*time.Second)
	mode, _ := proxy.ParseMode(cfg.Proxy.Mode)
	a.Resolver = proxy.NewResolver(a.Signer, a.Store, mode)

	a.Gate = newGate(cfg.Auth, log)
	a.Limiter = NewSummaryLimiter(cfg.Summary)

	var summarizer summary.Summarizer
	if v := a.openSummarizer(ctx, cfg.Summary, creds, log); v != nil {
		summarizer = v
	}
	a.Papers = service.NewPaperService(a.Store, repo, summarizer, cfg.MaxPageSize)

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("storage", cfg.StorageBackend).
		Str("proxy_mode", string(mode)).
		Dur("url_expiry", a.Signer.Expiry()).
		Bool("delete_enabled", a.Gate != nil).
		Bool("summaries_enabled", summarizer != nil).
		Msg("application wired")
	return a, nil
}

func (a *App) openRepository(ctx context.Context, cfg *config.AppConfig, creds *credentialCache, log zerolog.Logger) (repository.PaperRepository, error) {
	if cfg.StoreBackend == config.StoreFirestore {
		c, err := creds.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore credentials: %w", err)
		}
		client, err := firestore.NewClient(ctx, c.ProjectID, c.Options...)
		if err != nil {
			return nil, fmt.Errorf("create firestore client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		repo := fsrepo.NewPaperFirestore(client)
		a.Pinger = repo
		log.Info().Str("project", c.ProjectID).Str("credentials", c.Source).Msg("firestore connected")
		return repo, nil
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	if cfg.Database.AutoMigrate {
		if err := migration.Up(db, log); err != nil {
			return nil, err
		}
	}
	a.Pinger = db
	return pgrepo.NewPaperPostgres(db), nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.AppConfig, creds *credentialCache) (storage.Storage, error) {
	if cfg.StorageBackend == config.StorageGCS {
		c, err := creds.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs credentials: %w", err)
		}
		s, err := storage.NewGCS(ctx, cfg.GCS.Bucket, c.Options...)
		if err != nil {
			return nil, err
		}
		a.addCloser(s)
		return s, nil
	}
	s, err := storage.NewMinIO(ctx, cfg.OSS)
	if err != nil {
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}
	return s, nil
}

// openSummarizer returns nil when summaries are not configured or the client
// cannot be created; the rest of the service runs without them.
func (a *App) openSummarizer(ctx context.Context, cfg config.SummaryConfig, creds *credentialCache, log zerolog.Logger) *summary.Vertex {
	if cfg.ProjectID == "" {
		log.Warn().Msg("VERTEX_PROJECT_ID not set, summaries disabled")
		return nil
	}
	c, err := creds.get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no credentials for vertex, summaries disabled")
		return nil
	}
	v, err := summary.NewVertex(ctx, cfg.ProjectID, cfg.Region, cfg.Model, c.Options...)
	if err != nil {
		log.Warn().Err(err).Msg("vertex client unavailable, summaries disabled")
		return nil
	}
	a.closers = append(a.closers, v.Close)
	return v
}

// newGate returns nil when no verification key is configured, which disables deletes.
func newGate(cfg config.AuthConfig, log zerolog.Logger) *auth.Gate {
	verifier, err := auth.NewJWTVerifier(cfg)
	if err != nil {
		if errors.Is(err, auth.ErrNoVerificationKey) {
			log.Warn().Msg("no jwt verification key, delete disabled")
		} else {
			log.Error().Err(err).Msg("invalid jwt verification key, delete disabled")
		}
		return nil
	}
	g := auth.NewGate(verifier, cfg.AdminEmails)
	if g.Open() {
		log.Warn().Msg("ADMIN_EMAILS empty, any verified identity may delete")
	}
	return g
}

// NewSummaryLimiter returns nil, meaning unthrottled, when RPS is not positive.
func NewSummaryLimiter(cfg config.SummaryConfig) *rate.Limiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RPS), burst)
}

// Routes returns the HTTP dependencies.
func (a *App) Routes() handler.Deps {
	return handler.Deps{
		Papers:         a.Papers,
		Signer:         a.Signer,
		Resolver:       a.Resolver,
		Gate:           a.Gate,
		Pinger:         a.Pinger,
		SummaryLimiter: a.Limiter,
		Debug:          a.Config.Presence(),
	}
}

// Ingester returns a batch/event ingester over the wired service.
func (a *App) Ingester(opts ...ingest.Option) *ingest.Ingester {
	return ingest.New(a.Papers, append([]ingest.Option{ingest.WithStore(a.Store)}, opts...)...)
}

func (a *App) addCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
