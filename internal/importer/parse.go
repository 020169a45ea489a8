// Package importer integrates incoming data into a document: full
// exports, legacy v1 exports and shared library snapshots.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/schema"
	"github.com/starford/taborganizer/internal/snapshot"
)

// Kind is the recognized shape of incoming data.
type Kind string

const (
	KindFullExport Kind = "full_export"
	KindLegacy     Kind = "legacy_v1"
	KindShare      Kind = "share"
)

// Names given to libraries synthesized from data that carries none.
const (
	ImportedLibraryName = "Imported"
	ImportedLibraryIcon = "📥"
	SharedLibraryName   = "Shared"
	UnnamedCategory     = "Unnamed"
)

// ImportedLibraryKey keys the library synthesized from legacy and share
// data. It is fixed so a preview and a later import of the same bytes
// agree on it in Resolution.PerLibrary.
const ImportedLibraryKey = "imported"

// Incoming is parsed import data, already upgraded to the current link
// shape. Libraries keep the keys of the source document.
type Incoming struct {
	Kind       Kind
	Version    string
	ExportDate string
	Libraries  *models.Libraries
	// Share is set for KindShare.
	Share *snapshot.Portable
}

type envelope struct {
	Version    json.RawMessage `json:"version"`
	ExportDate json.RawMessage `json:"exportDate"`
	Libraries  json.RawMessage `json:"libraries"`
	Categories json.RawMessage `json:"categories"`
}

// Parse recognizes raw as a full export, a legacy v1 export or a share
// snapshot. Anything else fails with apperr.ErrImportParse before the
// caller's document is touched.
func Parse(raw []byte, newKey id.Generator) (*Incoming, error) {
	if newKey == nil {
		newKey = id.MustGenerate
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("import: top level must be a JSON object: %w", apperr.ErrImportParse)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("import: %s: %w", err.Error(), apperr.ErrImportParse)
	}
	in := &Incoming{Version: jsonString(env.Version), ExportDate: jsonString(env.ExportDate)}

	switch {
	case startsWith(env.Libraries, '{'):
		in.Kind = KindFullExport
		in.Libraries = schema.DecodeLibraries(env.Libraries)

	case startsWith(env.Categories, '{'):
		in.Kind = KindLegacy
		in.Version = snapshot.ExportVersion
		lib := models.NewLibrary(ImportedLibraryName, ImportedLibraryIcon)
		lib.Categories = schema.DecodeCategories(env.Categories)
		in.Libraries = models.NewLibraries()
		in.Libraries.Set(ImportedLibraryKey, lib)

	case startsWith(env.Categories, '['):
		var p snapshot.Portable
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("import: share snapshot: %s: %w", err.Error(), apperr.ErrImportParse)
		}
		in.Kind = KindShare
		in.Share = &p
		lib := models.NewLibrary(ImportedLibraryName, ImportedLibraryIcon)
		for _, c := range SelectShare(&p, nil) {
			lib.Categories.Set(newKey(id.CategoryPrefix), c)
		}
		in.Libraries = models.NewLibraries()
		in.Libraries.Set(ImportedLibraryKey, lib)

	default:
		return nil, fmt.Errorf("import: no libraries or categories found: %w", apperr.ErrImportParse)
	}
	return in, nil
}

// ParseShare decodes a stored share payload.
func ParseShare(raw []byte) (*snapshot.Portable, error) {
	var p snapshot.Portable
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("import: share snapshot: %s: %w", err.Error(), apperr.ErrImportParse)
	}
	return &p, nil
}

func startsWith(raw json.RawMessage, c byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == c
}

func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
