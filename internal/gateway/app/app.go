package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/credstore"
	httpapi "github.com/aussiebroadwan/chatbridge/internal/gateway/http"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol/protosim"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/store"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/chatbridge/pkg/cryptox"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	creds   *credstore.Store
	factory protocol.Factory

	// Services
	registry            *service.Registry
	cache               *service.PairCache
	sessionManager      *service.SessionManager
	messageService      *service.MessageService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set master key path for credential blob sealing
	if cfg.MasterKeyFile != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyFile)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	creds, err := credstore.New(cfg.AuthDir)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	app.creds = creds

	// The simulated driver keeps the gateway self-contained; swap the factory
	// here when wiring a real protocol.
	factory := protosim.NewFactory()
	factory.PairDelay = cfg.SimPairDelay
	app.factory = factory

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	// Pick up every instance recorded before the last shutdown
	if err := app.sessionManager.RestoreAll(context.Background()); err != nil {
		return fmt.Errorf("failed to restore instances: %w", err)
	}

	app.logger.Info("gateway service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Drop live protocol connections and cancel reconnect timers. Durable
	// records survive, so the next boot restores every instance.
	if err := app.sessionManager.Close(); err != nil {
		app.logger.Error("error closing session manager", "error", err)
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gateway service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	if dir := filepath.Dir(app.cfg.DatabaseFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.registry = service.NewRegistry()
	app.cache = service.NewPairCache()

	app.sessionManager = service.NewSessionManager(
		app.db,
		app.creds,
		app.factory,
		app.registry,
		app.cache,
		app.logger,
		service.ManagerConfig{
			QRTTL:          app.cfg.QRTTL,
			ReconnectDelay: app.cfg.ReconnectDelay,
			DialTimeout:    app.cfg.DialTimeout,
		},
	)

	app.messageService = &service.MessageService{
		Registry:     app.registry,
		Store:        app.db,
		ChatDomain:   app.cfg.ChatDomain,
		MaxFileBytes: app.cfg.MaxFileBytes,
		FetchTimeout: app.cfg.FetchTimeout,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.cache,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.QRTTL,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		httpx.APIKeyConfig{Key: app.cfg.APIKey, KeyHash: app.cfg.APIKeyHash},
		app.logger,
	)

	// Wire services to router
	router.SessionManager = app.sessionManager
	router.MessageService = app.messageService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
