package organizer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/events"
	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/snapshot"
)

// PreviewImport parses raw and reports what Import would change.
func (s *Store) PreviewImport(raw []byte) (importer.Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := importer.Parse(raw, s.newKey)
	if err != nil {
		return importer.Preview{}, err
	}
	return importer.PreviewImport(s.doc, in), nil
}

// Import parses raw and merges it into the document. Parse failures leave
// the document unchanged.
func (s *Store) Import(raw []byte, res importer.Resolution) (importer.Result, error) {
	var out importer.Result
	err := s.Update(func(doc *models.Document) error {
		in, err := importer.Parse(raw, s.newKey)
		if err != nil {
			return err
		}
		out = importer.Import(doc, in, res, s.newKey)
		return nil
	})
	if err != nil {
		return importer.Result{}, err
	}
	s.logger.Info("organizer: import completed",
		slog.Int("imported", out.Imported),
		slog.Int("skipped", out.Skipped),
		slog.Int("links", out.Links),
	)
	s.events.Publish(events.Event{Type: events.TypeImportCompleted, Data: events.ImportCompleted{
		Libraries:  out.Imported,
		Skipped:    out.Skipped,
		Categories: out.Categories,
		Links:      out.Links,
	}})
	return out, nil
}

// ImportShare integrates the selected part of a share snapshot.
func (s *Store) ImportShare(p *snapshot.Portable, sel importer.ShareSelection, mode importer.ShareMode, libName, libIcon string) (importer.ShareResult, error) {
	if p == nil {
		return importer.ShareResult{}, fmt.Errorf("import share: snapshot: %w", apperr.ErrValidation)
	}
	var out importer.ShareResult
	err := s.Update(func(doc *models.Document) error {
		var err error
		out, err = importer.ImportShare(doc, p, sel, mode, libName, libIcon, s.newKey)
		return err
	})
	return out, err
}

// Snapshot builds a shareable snapshot of the selected links of a library.
func (s *Store) Snapshot(libKey string, sel snapshot.Selection, message string) (*snapshot.Portable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := library(s.doc, libKey)
	if err != nil {
		return nil, err
	}
	return snapshot.Build(lib, sel, message)
}

// Export builds a full export of the selected libraries.
func (s *Store) Export(sel snapshot.ExportSelection, now time.Time) (*snapshot.Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.FullExport(s.doc, sel, now)
}
