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

	"github.com/starford/inkpad/internal/api"
	"github.com/starford/inkpad/internal/category"
	"github.com/starford/inkpad/internal/notestore"
	"github.com/starford/inkpad/internal/noteservice"
	"github.com/starford/inkpad/internal/presenter"
	"github.com/starford/inkpad/internal/settings"
	"github.com/starford/inkpad/internal/sse"
)

var (
	_ presenter.ErrorReporter  = (*sse.Broker)(nil)
	_ presenter.ChangeListener = (*sse.Broker)(nil)
)

// stack is the persistence layer shared by every command.
type stack struct {
	store    *notestore.Store
	registry *category.Registry
	svc      *noteservice.Service
}

func (s *stack) Close() error {
	return s.store.Close()
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func openStack(cfg *Config, logger *slog.Logger) (*stack, error) {
	for _, p := range []string{cfg.Store.Path, cfg.Settings.Path} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("create dir for %s: %w", p, err)
		}
	}

	store, err := notestore.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("init note store: %w", err)
	}
	registry := category.NewRegistry(settings.NewFile(cfg.Settings.Path))
	return &stack{
		store:    store,
		registry: registry,
		svc:      noteservice.NewService(store, registry, noteservice.WithLogger(logger)),
	}, nil
}

func configFrom(opts []Option) (*application, error) {
	app := &application{output: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := configFrom(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("settings_path", cfg.Settings.Path),
		slog.String("default_sort", cfg.Notes.DefaultSort),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, err := openStack(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	// SSE broker doubles as the error and change channel of the presenters.
	broker := sse.NewBroker(time.Second, sse.WithCounts(st.store, st.registry))
	defer broker.Close()

	coord := presenter.NewCoordinator(st.svc, st.store, st.registry,
		presenter.WithSorting(cfg.Notes.Sorting()),
		presenter.WithErrorReporter(broker),
		presenter.WithChangeListener(broker),
	)
	if err := coord.Load(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(coord, st.svc, api.RouterOptions{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		Events:         broker,
		AllowedOrigins: cfg.App.HTTP.CORSOrigins,
	})

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := st.store.CountAll(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Closing the broker ends open event streams so Shutdown can finish.
	httpServer.RegisterOnShutdown(broker.Close)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reconcile the category list when the settings file changes on disk.
	if cfg.Settings.Watch {
		g.Go(func() error {
			err := settings.Watch(gCtx, cfg.Settings.Path, logger, func() {
				// Failures reach clients through the broker.
				_ = coord.CategoriesChanged(gCtx)
			})
			if err != nil {
				logger.Warn("settings watcher stopped", slog.String("error", err.Error()))
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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the settings watcher exits with the server.
var errShutdown = errors.New("shutdown")
