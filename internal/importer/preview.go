package importer

import (
	"strings"

	"github.com/starford/taborganizer/internal/models"
)

// LibrarySummary describes one incoming library.
type LibrarySummary struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Categories int    `json:"categories"`
	Links      int    `json:"links"`
}

// Conflict is an incoming library whose name matches an existing one.
type Conflict struct {
	LibrarySummary
	ExistingKey string `json:"existingKey"`
	Policy      Policy `json:"policy"`
}

// Preview summarizes what Import would do without touching the document.
type Preview struct {
	Kind       Kind             `json:"kind"`
	Version    string           `json:"version,omitempty"`
	ExportDate string           `json:"exportDate,omitempty"`
	Libraries  int              `json:"libraries"`
	Categories int              `json:"categories"`
	Links      int              `json:"links"`
	New        []LibrarySummary `json:"new"`
	Conflicts  []Conflict       `json:"conflicts"`
}

// PreviewImport reports totals and name conflicts for in against doc.
// Every conflict starts out with PolicyMerge.
func PreviewImport(doc *models.Document, in *Incoming) Preview {
	existing := nameIndex(doc)
	pv := Preview{
		Kind:       in.Kind,
		Version:    in.Version,
		ExportDate: in.ExportDate,
		New:        []LibrarySummary{},
		Conflicts:  []Conflict{},
	}
	for p := in.Libraries.Oldest(); p != nil; p = p.Next() {
		lib := p.Value
		if lib == nil {
			continue
		}
		sum := LibrarySummary{
			Key:        p.Key,
			Name:       lib.Name,
			Icon:       lib.Icon,
			Categories: lib.Categories.Len(),
			Links:      lib.LinkCount(),
		}
		pv.Libraries++
		pv.Categories += sum.Categories
		pv.Links += sum.Links
		if key, ok := existing[strings.ToLower(lib.Name)]; ok {
			pv.Conflicts = append(pv.Conflicts, Conflict{LibrarySummary: sum, ExistingKey: key, Policy: PolicyMerge})
			continue
		}
		pv.New = append(pv.New, sum)
	}
	return pv
}
