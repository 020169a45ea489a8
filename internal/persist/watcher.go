package persist

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/taborganizer/internal/events"
)

const reloadDebounce = 200 * time.Millisecond

// Watch observes the cache file at path and applies writes made by other
// sessions until ctx is cancelled. Writes whose content matches this
// gateway's last write are ignored.
//
// The parent directory is watched rather than the file itself, because
// atomic writes replace the file by rename.
func (g *Gateway) Watch(ctx context.Context, path string, apply ApplyFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}
	g.logger.Info("watcher: started", slog.String("path", path))

	// reloadTimer debounces bursts of events from a single write.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDebounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			g.logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			g.reloadFromCache(path, apply)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (g *Gateway) reloadFromCache(path string, apply ApplyFunc) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Removed or mid-replace; the next event retries.
		g.logger.Debug("watcher: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if g.isSelfWrite(data) {
		return
	}
	if _, err := apply(data); err != nil {
		g.logger.Warn("watcher: foreign write unreadable", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	g.remember(data)
	g.logger.Info("watcher: reloaded foreign write", slog.String("path", path))
	g.events.Publish(events.Event{Type: events.TypeDocumentReloaded, Data: events.DocumentReloaded{Source: SourceCache}})
}
