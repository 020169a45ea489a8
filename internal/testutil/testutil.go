// Package testutil provides shared test helpers for wiring stores and backends.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/organizer"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/remote"
	"github.com/starford/taborganizer/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestBackend opens a SQLite remote in a temporary directory that is
// automatically closed.
func TestBackend(t *testing.T) *remote.SQL {
	t.Helper()
	b, err := remote.OpenSQLite(filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// TestStore creates a store over an in-memory cache with sequential keys
// ("lib_1", "cat_2", ...). In-flight remote saves are awaited on cleanup.
func TestStore(t *testing.T, cfg persist.Config) (*organizer.Store, *persist.Gateway) {
	t.Helper()
	if cfg.Cache == nil {
		cfg.Cache = storage.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = Logger()
	}
	gw := persist.New(cfg)
	t.Cleanup(gw.Wait)
	store := organizer.New(gw,
		organizer.WithKeyGenerator(id.Sequence()),
		organizer.WithLogger(cfg.Logger),
	)
	return store, gw
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
