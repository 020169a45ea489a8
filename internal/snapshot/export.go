package snapshot

import (
	"fmt"
	"time"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/models"
)

// ExportVersion is the version stamped on full exports.
const ExportVersion = "3.0"

// Export is the full-fidelity backup of some or all libraries.
type Export struct {
	Version         string            `json:"version"`
	ExportDate      time.Time         `json:"exportDate"`
	Libraries       *models.Libraries `json:"libraries"`
	TotalLibraries  int               `json:"totalLibraries"`
	TotalCategories int               `json:"totalCategories"`
}

// ExportSelection picks category keys per library key. A nil selection
// exports everything; a library mapped to nil exports all its categories.
type ExportSelection map[string][]string

// FullExport copies the selected libraries verbatim, status and full
// notes included. Selecting nothing is a validation error.
func FullExport(doc *models.Document, sel ExportSelection, now time.Time) (*Export, error) {
	out := &Export{
		Version:    ExportVersion,
		ExportDate: now.UTC(),
		Libraries:  models.NewLibraries(),
	}
	for p := doc.Libraries.Oldest(); p != nil; p = p.Next() {
		cats, picked := sel[p.Key]
		if sel != nil && !picked {
			continue
		}
		src := p.Value
		lib := models.NewLibrary(src.Name, src.Icon)
		for cp := src.Categories.Oldest(); cp != nil; cp = cp.Next() {
			if cats != nil && indexOf(cats, cp.Key) < 0 {
				continue
			}
			lib.Categories.Set(cp.Key, cp.Value.Clone())
		}
		out.Libraries.Set(p.Key, lib)
		out.TotalCategories += lib.Categories.Len()
	}
	out.TotalLibraries = out.Libraries.Len()
	if out.TotalLibraries == 0 {
		return nil, fmt.Errorf("export: select at least one library: %w", apperr.ErrValidation)
	}
	return out, nil
}

// FileName is the suggested download name of an export made at t.
func FileName(t time.Time) string {
	return "tab-organizer-export-" + t.Format("2006-01-02") + ".json"
}

func indexOf(keys []string, k string) int {
	for i, key := range keys {
		if key == k {
			return i
		}
	}
	return -1
}
