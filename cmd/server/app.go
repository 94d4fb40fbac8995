package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/traderoom/journal-api/internal/config"
	"github.com/traderoom/journal-api/internal/gateway"
	"github.com/traderoom/journal-api/internal/platform/gemini"
	"github.com/traderoom/journal-api/internal/platform/postgres"
	"github.com/traderoom/journal-api/internal/quota"
	"github.com/traderoom/journal-api/internal/ratelimit"
	"github.com/traderoom/journal-api/internal/service/auth"
	"github.com/traderoom/journal-api/internal/service/insight"
	"github.com/traderoom/journal-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	profileStore store.ProfileStore
	cacheStore   store.ResponseCacheStore

	// Services
	tokenVerifier auth.TokenVerifier
	usageGate     *quota.Gate
	aiGateway     *gateway.Gateway
	insights      *insight.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts the core dependencies that must be established
// before application wiring: configuration, logger, and database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenVerifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.profileStore = postgres.NewPostgresProfileStore(db)
	app.cacheStore = postgres.NewPostgresResponseCacheStore(db)

	// One pacer for the whole process: every upstream request goes through
	// it regardless of which feature triggered the call.
	pacer := ratelimit.NewPacer(time.Duration(cfg.LLM.MinRequestIntervalMs) * time.Millisecond)

	geminiClient, err := gemini.NewClient(
		logger.With("component", "gemini_client"),
		cfg.LLM,
		pacer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	logger.Info("gemini client initialized",
		"model", cfg.LLM.ModelName,
		"min_request_interval", pacer.Interval())

	app.usageGate = quota.NewGate(app.profileStore, cfg.Quota)
	app.aiGateway = gateway.New(geminiClient, app.cacheStore, app.usageGate)
	app.insights = insight.NewService(app.aiGateway)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
