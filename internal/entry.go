// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/access"
	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/locationservice"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/places"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/snapshot"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/store"
)

// buildStore constructs the persistence backend. The second return value is
// non-nil only in local mode, where the snapshot watcher needs it.
func buildStore(cfg *Config, logger *slog.Logger) (store.Store, *store.Local, error) {
	if cfg.Store.Mode == StoreModeRemote {
		return store.NewRemote(store.RemoteConfig{
			BaseURL: cfg.Remote.BaseURL,
			APIKey:  cfg.Remote.APIKey,
			Table:   cfg.Remote.Table,
		}, logger), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Snapshot.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	snap, err := snapshot.New(cfg.Store.Snapshot.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init snapshot: %w", err)
	}
	local, err := store.NewLocal(snap, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init local store: %w", err)
	}
	return local, local, nil
}

// buildProvider constructs the optional place provider with its SQLite
// lookup cache. The returned closer is never nil.
func buildProvider(cfg *Config, logger *slog.Logger) (places.Provider, io.Closer, error) {
	if !cfg.Places.Enabled() {
		return nil, noopCloser{}, nil
	}
	client := places.NewClient(places.ClientConfig{
		BaseURL: cfg.Places.BaseURL,
		APIKey:  cfg.Places.APIKey,
	}, logger)
	if cfg.Cache.Path == "" {
		return client, noopCloser{}, nil
	}
	cache, err := places.OpenCache(cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init places cache: %w", err)
	}
	return places.WithCache(client, cache, logger), cache, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_mode", cfg.Store.Mode),
		slog.Bool("places_enabled", cfg.Places.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, local, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}

	provider, cacheCloser, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer cacheCloser.Close()

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Domain services.
	gate := access.NewGate(cfg.Access.Codes)
	svc := locationservice.NewService(st, broker)
	engine := search.NewEngine(st, provider, logger)

	apiRouter := api.NewRouter(svc, engine, gate, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the snapshot file for external edits (local mode only).
	if local != nil {
		g.Go(func() error {
			err := store.WatchSnapshot(gCtx, local, cfg.Store.Snapshot.Path, logger, func() {
				broker.PublishLocationEvent("reloaded", "")
			})
			if err != nil {
				logger.Warn("snapshot watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP stdio transport instead of the HTTP API. Logs go to
// stderr because stdout carries the protocol stream.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	st, _, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	provider, cacheCloser, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer cacheCloser.Close()

	svc := locationservice.NewService(st, nil)
	engine := search.NewEngine(st, provider, logger)
	gate := access.NewGate(cfg.Access.Codes)

	return mcpserver.New(svc, engine, gate).ServeStdio()
}
