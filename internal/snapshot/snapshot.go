// Package snapshot projects the document into its two portable forms: the
// shareable subset, which drops personal progress state, and the full
// export used for backup and restore.
package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/models"
)

// PortableVersion is the version stamped on shareable snapshots.
const PortableVersion = "1.0"

// MaxMessage is the longest share message, in runes.
const MaxMessage = 200

// Portable is a de-identified subset of one library. Links carry no
// status and no full note.
type Portable struct {
	Version    string             `json:"version,omitempty"`
	Message    string             `json:"message,omitempty"`
	Categories []PortableCategory `json:"categories"`
}

// PortableCategory is an ordered category of a Portable snapshot.
type PortableCategory struct {
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Notes    string         `json:"notes"`
	Links    []PortableLink `json:"links"`
}

// PortableLink is a link of a Portable snapshot.
type PortableLink struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Thumbnail string   `json:"thumbnail"`
	LinkType  LinkType `json:"link_type"`
	Notes     string   `json:"notes"`
	Position  int      `json:"position"`
}

// Selection picks link indices per category key. A nil Selection picks
// every link of every category.
type Selection map[string][]int

// LinkCount returns the number of links in the snapshot.
func (p *Portable) LinkCount() int {
	n := 0
	for _, c := range p.Categories {
		n += len(c.Links)
	}
	return n
}

// Build projects the selected links of lib into a portable snapshot.
// Categories are emitted in library order; categories with no selected
// links are dropped. message is trimmed and limited to MaxMessage runes.
func Build(lib *models.Library, sel Selection, message string) (*Portable, error) {
	if lib == nil {
		return nil, fmt.Errorf("snapshot: library: %w", apperr.ErrNotFound)
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > MaxMessage {
		return nil, fmt.Errorf("snapshot: message longer than %d characters: %w", MaxMessage, apperr.ErrValidation)
	}

	out := &Portable{Version: PortableVersion, Message: message, Categories: []PortableCategory{}}
	for p := lib.Categories.Oldest(); p != nil; p = p.Next() {
		cat := p.Value
		indices := allIndices(len(cat.Links))
		if sel != nil {
			chosen, ok := sel[p.Key]
			if !ok {
				continue
			}
			indices = normalize(chosen, len(cat.Links))
		}
		if len(indices) == 0 {
			continue
		}

		pc := PortableCategory{
			Name:     cat.Name,
			Position: len(out.Categories),
			Notes:    cat.Task,
			Links:    make([]PortableLink, 0, len(indices)),
		}
		for _, i := range indices {
			l := cat.Links[i]
			pc.Links = append(pc.Links, PortableLink{
				Title:     l.Title,
				URL:       l.URL,
				Thumbnail: l.Icon,
				LinkType:  Classify(l.URL),
				Notes:     linkNotes(l),
				Position:  len(pc.Links),
			})
		}
		out.Categories = append(out.Categories, pc)
	}
	return out, nil
}

func linkNotes(l models.Link) string {
	if l.LinkNotes != "" {
		return l.LinkNotes
	}
	return l.QuickNote
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// normalize sorts indices, drops duplicates and drops those outside [0, n).
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
