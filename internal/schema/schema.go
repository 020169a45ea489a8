// Package schema decodes persisted documents of every known shape into the
// current model and keeps the document invariant intact.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
)

// Version identifies the persisted shape a document was decoded from.
type Version int

const (
	// VersionLegacy is the flat category-key → category mapping.
	VersionLegacy Version = 1
	// VersionCurrent is the {libraries, currentLibrary} shape.
	VersionCurrent Version = 2
)

func (v Version) String() string {
	switch v {
	case VersionLegacy:
		return "v1"
	case VersionCurrent:
		return "v2"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

var errNotCurrent = errors.New("not a current-shape document")

// rawObjects is an insertion-ordered JSON object whose values are decoded lazily.
type rawObjects = orderedmap.OrderedMap[string, json.RawMessage]

type envelope struct {
	Libraries      json.RawMessage `json:"libraries"`
	CurrentLibrary json.RawMessage `json:"currentLibrary"`
}

// Decode upgrades raw to the current shape and reports which shape it
// had. It fails only when raw is not a JSON object; malformed entries
// inside an otherwise valid object are dropped.
func Decode(raw []byte, newKey id.Generator) (*models.Document, Version, error) {
	if newKey == nil {
		newKey = id.MustGenerate
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, 0, fmt.Errorf("decode document: top level must be a JSON object")
	}
	if !json.Valid(raw) {
		return nil, 0, fmt.Errorf("decode document: invalid JSON")
	}

	doc, err := decodeCurrent(raw)
	if err == nil {
		return doc, VersionCurrent, nil
	}
	if !errors.Is(err, errNotCurrent) {
		return nil, 0, err
	}
	doc, err = decodeLegacy(raw, newKey)
	if err != nil {
		return nil, 0, err
	}
	return doc, VersionLegacy, nil
}

// Migrate is Decode without the version.
func Migrate(raw []byte, newKey id.Generator) (*models.Document, error) {
	doc, _, err := Decode(raw, newKey)
	return doc, err
}

// Encode serializes doc in the current shape.
func Encode(doc *models.Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func decodeCurrent(raw []byte) (*models.Document, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errNotCurrent
	}
	if len(env.Libraries) == 0 || bytes.Equal(env.Libraries, []byte("null")) {
		return nil, errNotCurrent
	}
	doc := models.NewDocument()
	doc.Libraries = DecodeLibraries(env.Libraries)
	// A non-string currentLibrary is left empty for EnsureValid to repoint.
	_ = json.Unmarshal(env.CurrentLibrary, &doc.CurrentLibrary)
	return doc, nil
}

func decodeLegacy(raw []byte, newKey id.Generator) (*models.Document, error) {
	entries := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, entries); err != nil {
		return nil, fmt.Errorf("decode legacy document: %w", err)
	}

	key := newKey(id.LibraryPrefix)
	lib := models.NewLibrary(models.DefaultLibraryName, models.DefaultLibraryIcon)
	for p := entries.Oldest(); p != nil; p = p.Next() {
		cat, ok := decodeCategory(p.Value, true)
		if !ok || cat.Name == "" {
			continue
		}
		lib.Categories.Set(p.Key, cat)
	}

	doc := models.NewDocument()
	doc.Libraries.Set(key, lib)
	doc.CurrentLibrary = key
	return doc, nil
}

// DecodeLibraries decodes a keyed library object leniently. Anything that
// is not an object yields an empty map.
func DecodeLibraries(raw json.RawMessage) *models.Libraries {
	out := models.NewLibraries()
	entries, ok := objects(raw)
	if !ok {
		return out
	}
	for p := entries.Oldest(); p != nil; p = p.Next() {
		var rl rawLibrary
		if !isObject(p.Value) {
			continue
		}
		if err := json.Unmarshal(p.Value, &rl); err != nil {
			continue
		}
		lib := models.NewLibrary(rl.Name, rl.Icon)
		lib.Categories = DecodeCategories(rl.Categories)
		out.Set(p.Key, lib)
	}
	return out
}

// DecodeCategories decodes a keyed category object leniently, backfilling
// every link to the full field set.
func DecodeCategories(raw json.RawMessage) *models.Categories {
	out := models.NewCategories()
	entries, ok := objects(raw)
	if !ok {
		return out
	}
	for p := entries.Oldest(); p != nil; p = p.Next() {
		if cat, ok := decodeCategory(p.Value, false); ok {
			out.Set(p.Key, cat)
		}
	}
	return out
}

func objects(raw json.RawMessage) (*rawObjects, bool) {
	if !isObject(raw) {
		return nil, false
	}
	entries := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, entries); err != nil {
		return nil, false
	}
	return entries, true
}
