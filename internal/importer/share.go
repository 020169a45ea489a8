package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/snapshot"
)

// ShareSuffix is appended to libraries created from an accepted share.
const ShareSuffix = " (shared)"

// ShareMode chooses where accepted share content lands.
type ShareMode string

const (
	ShareIntoNew     ShareMode = "new"
	ShareIntoCurrent ShareMode = "current"
)

// ParseShareMode validates a mode name. The empty string is ShareIntoNew.
func ParseShareMode(s string) (ShareMode, error) {
	switch m := ShareMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ShareIntoNew, nil
	case ShareIntoNew, ShareIntoCurrent:
		return m, nil
	}
	return "", fmt.Errorf("unknown share mode %q", s)
}

// ShareSelection picks link indices per snapshot category index. A nil
// ShareSelection picks everything.
type ShareSelection map[int][]int

// ShareResult summarizes an accepted share.
type ShareResult struct {
	LibraryKey string `json:"libraryKey"`
	Categories int    `json:"categories"`
	Links      int    `json:"links"`
}

// SelectShare converts the selected part of p into categories. Personal
// progress fields start empty. Categories with no selected links are
// dropped.
func SelectShare(p *snapshot.Portable, sel ShareSelection) []*models.Category {
	var out []*models.Category
	for ci, pc := range p.Categories {
		indices := make([]int, 0, len(pc.Links))
		if sel == nil {
			for i := range pc.Links {
				indices = append(indices, i)
			}
		} else {
			indices = normalize(sel[ci], len(pc.Links))
		}
		if len(indices) == 0 {
			continue
		}
		name := strings.TrimSpace(pc.Name)
		if name == "" {
			name = UnnamedCategory
		}
		cat := &models.Category{
			Name:  name,
			Icon:  models.DefaultCategoryIcon,
			Color: models.DefaultCategoryColor,
			Task:  pc.Notes,
			Links: make([]models.Link, 0, len(indices)),
		}
		for _, i := range indices {
			pl := pc.Links[i]
			title := pl.Title
			if title == "" {
				title = models.DefaultLinkTitle
			}
			cat.Links = append(cat.Links, models.Link{
				URL:       pl.URL,
				Title:     title,
				Icon:      pl.Thumbnail,
				QuickNote: models.Truncate(pl.Notes, models.MaxQuickNote),
			})
		}
		out = append(out, cat)
	}
	return out
}

// ImportShare integrates the selected part of a share snapshot into doc.
// ShareIntoNew creates a library named after the sender's library and
// makes it current; ShareIntoCurrent appends to the current library.
// Nothing is changed when the selection is empty.
func ImportShare(doc *models.Document, p *snapshot.Portable, sel ShareSelection, mode ShareMode, libName, libIcon string, newKey id.Generator) (ShareResult, error) {
	if newKey == nil {
		newKey = id.MustGenerate
	}
	cats := SelectShare(p, sel)
	if len(cats) == 0 {
		return ShareResult{}, fmt.Errorf("import share: nothing selected: %w", apperr.ErrValidation)
	}

	var (
		key string
		dst *models.Library
	)
	switch mode {
	case ShareIntoCurrent:
		key = doc.CurrentLibrary
		if dst = doc.Current(); dst == nil {
			return ShareResult{}, fmt.Errorf("import share: current library: %w", apperr.ErrNotFound)
		}
	default:
		name := strings.TrimSpace(libName)
		if name == "" {
			name = SharedLibraryName
		}
		if libIcon == "" {
			libIcon = models.DefaultLibraryIcon
		}
		key = newKey(id.LibraryPrefix)
		dst = models.NewLibrary(name+ShareSuffix, libIcon)
		doc.Libraries.Set(key, dst)
		doc.CurrentLibrary = key
	}

	res := ShareResult{LibraryKey: key}
	for _, c := range cats {
		dst.Categories.Set(newKey(id.CategoryPrefix), c)
		res.Categories++
		res.Links += len(c.Links)
	}
	return res, nil
}

func normalize(indices []int, n int) []int {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
