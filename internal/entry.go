// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
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

	"github.com/starford/taborganizer/internal/api"
	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/mcpserver"
	"github.com/starford/taborganizer/internal/snapshot"
)

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("cache_dir", cfg.Cache.Dir),
		slog.String("session_mode", cfg.Session.Mode),
		slog.String("remote_driver", cfg.Remote.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeWith(c, logger)

	handler := api.NewHandler(c.store, c.gateway, c.shares)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, c.broker)

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
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "sync": c.gateway.Status().String()})
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		path, err := c.documentPath()
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := c.gateway.Watch(gCtx, path, c.store.Apply); err != nil {
				logger.Warn("watcher: stopped", slog.String("error", err.Error()))
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
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tool surface over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	c, err := open(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer closeWith(c, logger)

	logger.Info("mcp: serving on stdio")
	return mcpserver.New(c.store, app.version).ServeStdio()
}

// Export writes a full export of the loaded document to w.
func Export(ctx context.Context, w io.Writer, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	c, err := open(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer closeWith(c, logger)
	// Let an authenticated load replace the cached copy first.
	c.gateway.Wait()

	exp, err := c.store.Export(nil, time.Now())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	logger.Info("export: written",
		slog.Int("libraries", exp.TotalLibraries),
		slog.Int("categories", exp.TotalCategories),
		slog.String("suggested_name", snapshot.FileName(exp.ExportDate)))
	return nil
}

// Import merges raw into the loaded document and persists the result.
func Import(ctx context.Context, raw []byte, policy importer.Policy, opts ...Option) (importer.Result, error) {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return importer.Result{}, err
	}
	logger := app.newLogger()

	c, err := open(ctx, app.config, logger)
	if err != nil {
		return importer.Result{}, err
	}
	defer closeWith(c, logger)
	c.gateway.Wait()

	return c.store.Import(raw, importer.Resolution{Default: policy})
}
