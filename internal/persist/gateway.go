// Package persist implements the local-first persistence protocol: every
// save writes the local cache synchronously and then, for authenticated
// sessions, overwrites the remote record in the background.
package persist

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/checksum"
	"github.com/starford/taborganizer/internal/events"
	"github.com/starford/taborganizer/internal/remote"
	"github.com/starford/taborganizer/internal/storage"
)

// DefaultKey is the cache key holding the document.
const DefaultKey = "tabOrganizer"

// Reload sources.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// ApplyFunc installs a serialized document as the in-memory document and
// returns its canonical serialization.
type ApplyFunc func(raw []byte) ([]byte, error)

// Gateway owns the local cache key and the remote record of one session.
//
// Remote saves are unconditional overwrites and are never cancelled, so
// when saves overlap the last one to complete wins.
type Gateway struct {
	cache  storage.Cache
	key    string
	remote remote.DocumentStore
	events events.Publisher
	logger *slog.Logger

	mu      sync.Mutex
	session Session
	status  Status
	lastSum string // digest of the latest self-write

	wg sync.WaitGroup
}

// Config wires a Gateway.
type Config struct {
	Cache   storage.Cache
	Key     string               // defaults to DefaultKey
	Remote  remote.DocumentStore // nil disables sync
	Events  events.Publisher
	Logger  *slog.Logger
	Session Session
}

// New creates a gateway.
func New(cfg Config) *Gateway {
	g := &Gateway{
		cache:   cfg.Cache,
		key:     cfg.Key,
		remote:  cfg.Remote,
		events:  cfg.Events,
		logger:  cfg.Logger,
		session: cfg.Session,
	}
	if g.key == "" {
		g.key = DefaultKey
	}
	if g.events == nil {
		g.events = events.Discard
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.status = g.restingStatus(g.session)
	return g
}

// Key returns the cache key holding the document.
func (g *Gateway) Key() string { return g.key }

// Session returns the current session.
func (g *Gateway) Session() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// SetSession replaces the session. The next Persist uses it.
func (g *Gateway) SetSession(s Session) {
	g.mu.Lock()
	g.session = s
	g.mu.Unlock()
	g.setStatus(g.restingStatus(s), nil)
}

// Status returns the latest persistence status.
func (g *Gateway) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Persist writes data to the local cache and, for an authenticated session,
// starts a background remote overwrite. It never fails: local errors are
// logged and published, remote errors surface as StatusSyncError.
func (g *Gateway) Persist(data []byte) Status {
	g.writeLocal(data)

	sess := g.Session()
	if st := g.idleStatus(sess); st != StatusSyncing {
		g.setStatus(st, nil)
		return st
	}

	g.setStatus(StatusSyncing, nil)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := g.remote.Put(context.Background(), sess.UserID, data); err != nil {
			g.logger.Warn("persist: remote save failed",
				slog.String("user", sess.UserID),
				slog.String("error", err.Error()))
			g.setStatus(StatusSyncError, err)
			return
		}
		g.logger.Debug("persist: remote saved", slog.String("user", sess.UserID), slog.Int("bytes", len(data)))
		g.setStatus(StatusSynced, nil)
	}()
	return StatusSyncing
}

// Load applies the local cache immediately and, for an authenticated
// session, fetches the remote record in the background. A remote record
// replaces both the in-memory document and the local cache.
func (g *Gateway) Load(ctx context.Context, apply ApplyFunc) Status {
	raw, ok, err := g.cache.Get(g.key)
	switch {
	case err != nil:
		g.logger.Error("persist: local cache read failed", slog.String("error", err.Error()))
		g.events.Publish(events.Event{Type: events.TypePersistenceError, Data: events.PersistenceError{Error: err.Error()}})
	case ok:
		if _, err := apply([]byte(raw)); err != nil {
			g.logger.Error("persist: local cache unreadable", slog.String("error", err.Error()))
		} else {
			g.remember([]byte(raw))
		}
	}

	sess := g.Session()
	if st := g.idleStatus(sess); st != StatusSyncing {
		g.setStatus(st, nil)
		return st
	}

	g.setStatus(StatusSyncing, nil)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.fetchRemote(ctx, sess, apply)
	}()
	return StatusSyncing
}

func (g *Gateway) fetchRemote(ctx context.Context, sess Session, apply ApplyFunc) {
	rec, err := g.remote.Get(ctx, sess.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		g.logger.Info("persist: no remote document yet", slog.String("user", sess.UserID))
		g.setStatus(StatusLocalOnly, nil)
		return
	}
	if err != nil {
		g.logger.Warn("persist: remote load failed", slog.String("user", sess.UserID), slog.String("error", err.Error()))
		g.setStatus(StatusSyncError, err)
		return
	}
	canonical, err := apply(rec.Data)
	if err != nil {
		g.logger.Warn("persist: remote document unreadable", slog.String("user", sess.UserID), slog.String("error", err.Error()))
		g.setStatus(StatusSyncError, err)
		return
	}
	g.writeLocal(canonical)
	g.events.Publish(events.Event{Type: events.TypeDocumentReloaded, Data: events.DocumentReloaded{Source: SourceRemote}})
	g.logger.Info("persist: remote document loaded", slog.String("user", sess.UserID))
	g.setStatus(StatusSynced, nil)
}

// Wait blocks until every background remote operation has finished.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

func (g *Gateway) writeLocal(data []byte) bool {
	g.remember(data)
	if err := g.cache.Set(g.key, string(data)); err != nil {
		g.logger.Error("persist: local cache write failed", slog.String("error", err.Error()))
		g.events.Publish(events.Event{Type: events.TypePersistenceError, Data: events.PersistenceError{Error: err.Error()}})
		return false
	}
	g.events.Publish(events.Event{Type: events.TypeDocumentSaved, Data: events.DocumentSaved{Bytes: len(data)}})
	return true
}

func (g *Gateway) remember(data []byte) {
	sum := checksum.Sum(data)
	g.mu.Lock()
	g.lastSum = sum
	g.mu.Unlock()
}

// isSelfWrite reports whether data is what this gateway wrote last.
func (g *Gateway) isSelfWrite(data []byte) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return checksum.Equal(data, g.lastSum)
}

// idleStatus is the status a cycle ends in without remote I/O, or
// StatusSyncing when the session syncs.
func (g *Gateway) idleStatus(s Session) Status {
	switch {
	case s.Mode == ModeGuest:
		return StatusGuestMode
	case !s.Authenticated() || g.remote == nil:
		return StatusLocalOnly
	}
	return StatusSyncing
}

// restingStatus is the status of a session before its first remote cycle.
func (g *Gateway) restingStatus(s Session) Status {
	if st := g.idleStatus(s); st != StatusSyncing {
		return st
	}
	return StatusLocalOnly
}

func (g *Gateway) setStatus(s Status, err error) {
	g.mu.Lock()
	g.status = s
	g.mu.Unlock()
	data := events.SyncStatus{Status: s.String()}
	if err != nil {
		data.Error = err.Error()
	}
	g.events.Publish(events.Event{Type: events.TypeSyncStatus, Data: data})
}
