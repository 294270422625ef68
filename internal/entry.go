// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/metrics"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/site"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// runtime holds the wired components shared by every command.
type runtime struct {
	repo     *posts.Repository
	renderer *render.Renderer
	builder  *site.Builder
	db       *index.DB
	registry *prometheus.Registry
}

func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
}

func newApplication(opts []Option) (*application, *slog.Logger, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// wire builds the content pipeline. withIndex opens the search database.
func (app *application) wire(logger *slog.Logger, liveReload, withIndex bool) (*runtime, error) {
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("posts_dir", cfg.Content.PostsDir),
		slog.String("output_dir", cfg.Site.OutputDir),
		slog.String("base_path", cfg.Site.BasePath),
		slog.Bool("production", cfg.Site.Production),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src, err := storage.NewFS(cfg.Content.PostsDir)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}

	if err := os.MkdirAll(cfg.Site.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Site.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	rt := &runtime{registry: prometheus.NewRegistry()}
	tr := &content.Transformer{Production: cfg.Site.Production, BasePath: cfg.Site.BasePath}
	rt.repo = posts.NewRepository(src, tr)
	rt.renderer = render.New(render.Options{MaxLevel: cfg.Site.TOCMaxLevel})

	rt.builder, err = site.NewBuilder(rt.repo, rt.renderer, out, site.Config{
		Title:       cfg.Site.Title,
		BasePath:    cfg.Site.BasePath,
		LiveReload:  liveReload,
		Concurrency: cfg.Site.Concurrency,
		StaticDir:   cfg.Site.StaticDir,
	}, logger, metrics.NewPrometheusRecorder(rt.registry))
	if err != nil {
		return nil, fmt.Errorf("init site builder: %w", err)
	}

	if withIndex {
		rt.db, err = index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
	}
	return rt, nil
}

// Build generates the static site once.
func Build(ctx context.Context, opts ...Option) (*site.Report, error) {
	app, logger, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	rt, err := app.wire(logger, false, false)
	if err != nil {
		return nil, err
	}
	defer rt.close()

	report, err := rt.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return report, nil
}

// readyNotifier forwards to the SSE broker and marks the server ready after
// the first successful build.
type readyNotifier struct {
	*sse.Broker
	ready *atomic.Bool
}

func (n readyNotifier) PublishRebuild(changed []string, info sse.RebuildInfo) {
	n.ready.Store(true)
	n.Broker.PublishRebuild(changed, info)
}

func healthHandler(ok func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !ok() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"starting"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// Serve builds the site, then serves it with the JSON API and live reload,
// rebuilding whenever a post changes.
func Serve(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	rt, err := app.wire(logger, true, true)
	if err != nil {
		return err
	}
	defer rt.close()

	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	var ready atomic.Bool
	svc := blog.NewService(rt.repo, rt.renderer,
		blog.WithIndex(rt.db),
		blog.WithBuilder(rt.builder),
		blog.WithNotifier(readyNotifier{Broker: broker, ready: &ready}),
		blog.WithLogger(logger),
	)

	// A broken post should not stop the preview server; the next save retries.
	if _, err := svc.Rebuild(ctx, nil); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(cfg.App.HTTP.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.App.HTTP.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
			ExposedHeaders: []string{"ETag"},
			MaxAge:         300,
		}).Handler)
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthHandler(func() bool { return true }))
	r.Get("/health/ready", healthHandler(ready.Load))
	r.Handle("/metrics", metrics.Handler(rt.registry))

	// The API lives next to the pages so the live-reload script finds it.
	r.Mount(cfg.Site.BasePath+"/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	api.MountStatic(r, cfg.Site.OutputDir, cfg.Site.BasePath)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild on content changes.
	g.Go(func() error {
		err := index.Watch(gCtx, cfg.Content.PostsDir, index.DefaultDebounce, logger, func(slugs []string) {
			logger.Info("watcher: posts changed", slog.Any("slugs", slugs))
			if _, err := svc.Rebuild(gCtx, slugs); err != nil {
				logger.Error("rebuild failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		return nil
	})

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

// errShutdown cancels the group's context so the watcher stops after a signal.
var errShutdown = errors.New("shutdown")

// MCP indexes the published posts and serves them to an MCP client over
// stdio. The index is resynced whenever posts change on disk. Logs must not
// go to stdout here; stdout carries the protocol.
func MCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := app.wire(logger, false, true)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := blog.NewService(rt.repo, rt.renderer, blog.WithIndex(rt.db), blog.WithLogger(logger))
	report, err := svc.SyncIndex(ctx)
	if err != nil {
		return fmt.Errorf("mcp: index: %w", err)
	}
	logger.Info("mcp: index synced",
		slog.Int("indexed", report.Indexed),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("removed", report.Removed))

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		err := index.Watch(watchCtx, app.config.Content.PostsDir, index.DefaultDebounce, logger, func(_ []string) {
			if _, err := svc.SyncIndex(watchCtx); err != nil {
				logger.Error("mcp: resync failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			logger.Error("mcp: watcher stopped", slog.String("error", err.Error()))
		}
	}()

	return mcpserver.New(svc, app.version).ServeStdio()
}
