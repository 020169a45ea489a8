// Package organizer owns the in-memory document and its mutations. Every
// mutation runs to completion under one lock, repairs the document
// invariant and hands the serialized result to the persistence gateway.
package organizer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/taborganizer/internal/events"
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/schema"
)

// Persister receives the full serialized document after each mutation.
type Persister interface {
	Persist(data []byte) persist.Status
}

// Store is the single owner of the document.
type Store struct {
	mu     sync.Mutex
	doc    *models.Document
	gw     Persister
	newKey id.Generator
	events events.Publisher
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKeyGenerator replaces the library and category key generator.
func WithKeyGenerator(g id.Generator) Option {
	return func(s *Store) { s.newKey = g }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithEvents sets the publisher for import notifications.
func WithEvents(p events.Publisher) Option {
	return func(s *Store) { s.events = p }
}

// WithDocument seeds the store with doc instead of an empty document.
func WithDocument(doc *models.Document) Option {
	return func(s *Store) { s.doc = doc }
}

// New creates a store that persists through gw.
func New(gw Persister, opts ...Option) *Store {
	s := &Store{gw: gw, newKey: id.MustGenerate, events: events.Discard, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.doc, _ = schema.EnsureValid(s.doc, s.newKey)
	return s
}

// Document returns a deep copy of the current document.
func (s *Store) Document() *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Read calls fn with the live document under the store lock. fn must not
// retain or modify doc.
func (s *Store) Read(fn func(doc *models.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Encode returns the current serialized document.
func (s *Store) Encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.Encode(s.doc)
}

// Update runs fn on a working copy of the document. When fn succeeds the
// copy replaces the document and is persisted; when it fails the document
// is untouched.
func (s *Store) Update(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.doc.Clone()
	if err := fn(work); err != nil {
		return err
	}
	work, _ = schema.EnsureValid(work, s.newKey)
	data, err := schema.Encode(work)
	if err != nil {
		return fmt.Errorf("organizer: %w", err)
	}
	s.doc = work
	s.gw.Persist(data)
	return nil
}

// Apply migrates raw and installs it as the document without persisting.
// It returns the canonical serialization and satisfies persist.ApplyFunc.
func (s *Store) Apply(raw []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := schema.Migrate(raw, s.newKey)
	if err != nil {
		return nil, err
	}
	doc, _ = schema.EnsureValid(doc, s.newKey)
	data, err := schema.Encode(doc)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	s.logger.Debug("organizer: document applied", slog.Int("libraries", doc.Libraries.Len()))
	return data, nil
}

// KeyGenerator returns the generator used for new keys. Callers must only
// invoke it inside Update.
func (s *Store) KeyGenerator() id.Generator {
	return s.newKey
}
