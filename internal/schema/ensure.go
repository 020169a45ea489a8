package schema

import (
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
)

// EnsureValid repairs the document invariant in place and reports whether
// anything changed: a nil document or library map becomes empty, an empty
// document gets a default library, and a dangling currentLibrary is
// repointed to the first library.
func EnsureValid(doc *models.Document, newKey id.Generator) (*models.Document, bool) {
	if newKey == nil {
		newKey = id.MustGenerate
	}
	changed := false
	if doc == nil {
		doc = models.NewDocument()
		changed = true
	}
	if doc.Libraries == nil {
		doc.Libraries = models.NewLibraries()
		changed = true
	}
	for p := doc.Libraries.Oldest(); p != nil; p = p.Next() {
		if p.Value == nil {
			doc.Libraries.Set(p.Key, models.NewLibrary(models.DefaultLibraryName, models.DefaultLibraryIcon))
			changed = true
		}
		if normalizeLibrary(p.Value) {
			changed = true
		}
	}

	if doc.Libraries.Len() == 0 {
		key := newKey(id.LibraryPrefix)
		doc.Libraries.Set(key, models.NewLibrary(models.DefaultLibraryName, models.DefaultLibraryIcon))
		doc.CurrentLibrary = key
		return doc, true
	}
	if doc.Current() == nil {
		doc.CurrentLibrary = doc.Libraries.Oldest().Key
		changed = true
	}
	return doc, changed
}

// IsValid reports whether EnsureValid would leave doc untouched.
func IsValid(doc *models.Document) bool {
	if doc == nil || doc.Libraries == nil || doc.Libraries.Len() == 0 {
		return false
	}
	return doc.Current() != nil
}

func normalizeLibrary(lib *models.Library) bool {
	if lib == nil {
		return false
	}
	changed := false
	if lib.Categories == nil {
		lib.Categories = models.NewCategories()
		changed = true
	}
	for p := lib.Categories.Oldest(); p != nil; p = p.Next() {
		if p.Value == nil {
			lib.Categories.Set(p.Key, &models.Category{})
			changed = true
		}
		if p.Value.Links == nil {
			p.Value.Links = []models.Link{}
			changed = true
		}
	}
	return changed
}
