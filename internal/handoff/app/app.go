package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/handoff/internal/handoff/http"
	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/internal/handoff/store/drivers/sqlite"
	"github.com/aussiebroadwan/handoff/pkg/cryptox"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the handoff service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db *sqlite.Store

	// Services
	issuerService       *service.IssuerService
	exchangeService     *service.ExchangeService
	handoffService      *service.HandoffService
	scopeImporter       *service.ScopeImporter
	housekeepingService *service.HousekeepingService
	sessions            service.SessionVerifier
	limiter             httpx.Limiter

	// Scope file watcher lifecycle
	stopWatch context.CancelFunc

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "handoff-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
}

// OpenStore opens the database, installs the master key and applies
// migrations. The CLI subcommands share it with the server.
func OpenStore(cfg Config, logger *slog.Logger) (*sqlite.Store, error) {
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
	} else if os.Getenv(cryptox.MasterKeyEnv) == "" {
		logger.Warn("no master key configured, stored scope secrets will not survive a restart",
			"hint", "set MASTER_KEY_PATH or "+cryptox.MasterKeyEnv)
	}

	db, err := sqlite.NewStore(sqlite.FileDSN(cfg.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "file", cfg.DatabaseFile)
	return db, nil
}

// NewSessionVerifier picks the identity provider integration from cfg.
func NewSessionVerifier(cfg Config) (service.SessionVerifier, error) {
	switch cfg.IdPMode {
	case IdPModeHTTP:
		return service.NewHTTPSessionVerifier(cfg.IdPURL, cfg.IdPAPIKey, cfg.IdPTimeout, cfg.IdPMaxRPS), nil
	case IdPModeJWT:
		return &service.JWTSessionVerifier{
			Secret: []byte(cfg.IdPJWTSecret),
			Leeway: 5 * time.Second,
		}, nil
	default:
		return nil, fmt.Errorf("unknown IDP_MODE %q", cfg.IdPMode)
	}
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	db, err := OpenStore(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.initServices(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := app.initScopes(); err != nil {
		_ = db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	if app.cfg.ScopesFile != "" {
		ctx, cancel := context.WithCancel(slogx.WithContext(context.Background(), app.logger))
		app.stopWatch = cancel
		if err := app.scopeImporter.Watch(ctx, app.cfg.ScopesFile); err != nil {
			app.logger.Warn("scope file hot reload disabled", "file", app.cfg.ScopesFile, "error", err)
		}
	}

	app.logger.Info("handoff service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"direct_cookie", app.cfg.DirectCookie,
		"ratelimit_backend", app.cfg.RateLimitBackend,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down handoff service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.stopWatch != nil {
		app.stopWatch()
	}
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("handoff service stopped")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	sessions, err := NewSessionVerifier(app.cfg)
	if err != nil {
		return err
	}
	app.sessions = sessions

	app.issuerService = &service.IssuerService{
		Store:          app.db,
		Issuer:         app.cfg.Issuer,
		Audience:       app.cfg.Audience,
		TokenTTL:       app.cfg.TokenTTL,
		DefaultScopeID: app.cfg.DefaultScopeID,
		StoreTimeout:   app.cfg.StoreTimeout,
	}
	app.exchangeService = &service.ExchangeService{
		Store:        app.db,
		TTL:          app.cfg.StateTTL,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.handoffService = &service.HandoffService{
		Issuer:   app.issuerService,
		Exchange: app.exchangeService,
	}
	app.scopeImporter = &service.ScopeImporter{
		Store:  app.db,
		Logger: app.logger,
	}

	var storeLimiter *service.StoreLimiter
	switch app.cfg.RateLimitBackend {
	case RateLimitBackendMemory:
		app.limiter = httpx.NewMemoryLimiter()
		app.logger.Warn("in-memory rate limits are per instance")
	default:
		storeLimiter = &service.StoreLimiter{Store: app.db, Timeout: app.cfg.StoreTimeout}
		app.limiter = storeLimiter
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.exchangeService,
		storeLimiter,
		app.logger,
		app.cfg.HousekeepingInterval,
		longestWindow(),
	)
	return nil
}

// initScopes loads the scope file once so the first request already sees it.
func (app *Application) initScopes() error {
	if app.cfg.ScopesFile == "" {
		app.logger.Info("no scope file configured, using scopes already in the database")
		return nil
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	res, err := app.scopeImporter.ImportFile(ctx, app.cfg.ScopesFile)
	if err != nil {
		return fmt.Errorf("failed to import scopes: %w", err)
	}
	app.logger.Info("scopes imported", "file", app.cfg.ScopesFile, "upserted", res.Upserted, "deleted", res.Deleted)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.db,
		app.limiter,
		app.sessions,
		BuildVersion,
		app.logger,
	)

	router.HandoffService = app.handoffService
	router.IssuerService = app.issuerService
	router.DirectCookie = app.cfg.DirectCookie
	router.Cookie = httpapi.CookieConfig{
		Name:         app.cfg.CookieName,
		ParentDomain: app.cfg.CookieParentDomain,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// longestWindow is how long rate limit hits must be kept.
func longestWindow() time.Duration {
	w := time.Minute
	for _, p := range []httpx.RateLimitPolicy{httpx.IssuePolicy, httpx.ExchangePolicy, httpx.ListPolicy, httpx.HealthPolicy} {
		w = max(w, p.Window)
	}
	return w
}
