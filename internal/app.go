package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/taborganizer/internal/events"
	"github.com/starford/taborganizer/internal/organizer"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/remote"
	"github.com/starford/taborganizer/internal/sharing"
	"github.com/starford/taborganizer/internal/storage"
)

// components is the wired organizer shared by every command.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	cache   *storage.FS
	backend remote.Backend
	broker  *events.Broker
	gateway *persist.Gateway
	store   *organizer.Store
	shares  *sharing.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// open wires the cache, remote backend, gateway and store, then loads the
// document. Callers must Close the result.
func open(ctx context.Context, cfg *Config, logger *slog.Logger) (*components, error) {
	sess, err := cfg.Session.Session()
	if err != nil {
		return nil, err
	}

	var fsOpts []storage.FSOption
	if cfg.Cache.QuotaBytes > 0 {
		fsOpts = append(fsOpts, storage.WithQuota(cfg.Cache.QuotaBytes))
	}
	cache, err := storage.NewFS(cfg.Cache.Dir, fsOpts...)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	backend, err := remote.Open(ctx, cfg.Remote.Backend())
	if err != nil {
		return nil, fmt.Errorf("init remote: %w", err)
	}

	c := &components{cfg: cfg, logger: logger, cache: cache, backend: backend, broker: events.NewBroker()}

	var docs remote.DocumentStore
	if backend != nil {
		docs = backend
	} else if sess.Authenticated() {
		logger.Warn("app: authenticated session without remote, running local-only")
	}

	c.gateway = persist.New(persist.Config{
		Cache:   cache,
		Key:     cfg.Cache.DocumentKey,
		Remote:  docs,
		Events:  c.broker,
		Logger:  logger,
		Session: sess,
	})
	c.store = organizer.New(c.gateway,
		organizer.WithEvents(c.broker),
		organizer.WithLogger(logger),
	)
	if backend != nil {
		c.shares = sharing.New(sharing.Config{
			Shares:  backend,
			Org:     c.store,
			Session: c.gateway,
			Events:  c.broker,
			Logger:  logger,
		})
	}

	st := c.gateway.Load(ctx, c.store.Apply)
	logger.Info("app: document loaded",
		slog.String("mode", sess.Mode.String()),
		slog.String("status", st.String()),
		slog.Int("libraries", c.store.Document().Libraries.Len()))
	return c, nil
}

// Close waits for in-flight remote saves and releases the backend.
func (c *components) Close() error {
	c.gateway.Wait()
	c.broker.Close()
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}

// documentPath is the file the cache watcher observes.
func (c *components) documentPath() (string, error) {
	p, err := c.cache.Path(c.gateway.Key())
	if err != nil {
		return "", fmt.Errorf("resolve cache path: %w", err)
	}
	return p, nil
}

func closeWith(c *components, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("app: close failed", slog.String("error", err.Error()))
	}
}
