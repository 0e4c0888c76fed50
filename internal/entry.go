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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/corkboard/internal/api"
	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/index"
	"github.com/starford/corkboard/internal/interaction"
	"github.com/starford/corkboard/internal/mcpserver"
	"github.com/starford/corkboard/internal/metrics"
	"github.com/starford/corkboard/internal/persistence"
	"github.com/starford/corkboard/internal/render"
	"github.com/starford/corkboard/internal/sse"
	"github.com/starford/corkboard/internal/storage"
	"github.com/starford/corkboard/internal/workspace"
)

// services are the long-lived collaborators every command needs.
type services struct {
	cfg    *Config
	logger *slog.Logger
	store  storage.Store
	gw     *persistence.Gateway
	db     *index.DB
}

func (s *services) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("index close failed", slog.String("error", err.Error()))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("store close failed", slog.String("error", err.Error()))
	}
}

// setup applies options, installs the logger and opens the store and index.
func setup(ctx context.Context, opts []Option) (*services, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		out := app.logOutput
		if out == nil {
			out = os.Stdout
		}
		logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.Open(ctx, cfg.Store.Storage())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init index: %w", err)
	}

	gw := persistence.New(store)
	if err := index.Sync(ctx, db, gw, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &services{cfg: cfg, logger: logger, store: store, gw: gw, db: db}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	svc, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer svc.Close()
	cfg, logger := svc.cfg, svc.logger

	broker := sse.NewBroker(cfg.Events.ViewportThrottle)
	defer broker.Close()

	m := metrics.New()
	ws := workspace.New(svc.gw, svc.db,
		workspace.WithPresenter(func(id string) interaction.Presenter { return sse.NewPresenter(broker, id) }),
		workspace.WithMetrics(m),
		workspace.WithLogger(logger),
	)

	apiRouter := api.NewRouter(api.Deps{
		Index:     svc.db,
		Gateway:   svc.gw,
		Workspace: ws,
		Notify:    broker.PublishProjectEvent,
		Export:    cfg.Export.Options(),
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		if _, err := svc.store.Keys(req.Context(), persistence.KeyPrefix); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"store unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Snapshots written by other processes only show up through the file
	// system, so the watcher runs for the fs driver alone.
	if fs, ok := svc.store.(*storage.FS); ok {
		g.Go(func() error {
			err := index.Watch(gCtx, svc.db, svc.gw, fs, logger, func(kind, id string) {
				broker.PublishProjectEvent(kind, id)
				if kind == index.EventDeleted {
					return
				}
				if _, err := ws.Reload(gCtx, id); err != nil {
					logger.Warn("reload failed", slog.String("project", id), slog.String("error", err.Error()))
				}
			})
			if err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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
		if err := ws.Close(shutdownCtx); err != nil {
			logger.Error("saving open project failed", slog.String("error", err.Error()))
		}

		// Unblock the watcher when the shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout until stdin closes. Logs go to
// stderr unless a logger or log output was given.
func RunMCP(ctx context.Context, opts ...Option) error {
	svc, err := setup(ctx, append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	defer svc.Close()

	ws := workspace.New(svc.gw, svc.db, workspace.WithLogger(svc.logger))
	srv := mcpserver.New(svc.db, ws, nil)

	serveErr := srv.ServeStdio()
	if err := ws.Close(ctx); err != nil {
		svc.logger.Error("saving open project failed", slog.String("error", err.Error()))
	}
	return serveErr
}

// Export renders the stored snapshot of projectID as PNG into w.
func Export(ctx context.Context, projectID string, w io.Writer, opts ...Option) error {
	svc, err := setup(ctx, append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := svc.db.GetProject(projectID); err != nil {
		return fmt.Errorf("export %s: %w", projectID, err)
	}
	snap, err := svc.gw.Load(ctx, projectID)
	if errors.Is(err, apperr.ErrNotFound) {
		snap, err = board.NewSnapshot(), nil
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", projectID, err)
	}
	return render.WritePNG(w, snap, svc.cfg.Export.Options())
}
