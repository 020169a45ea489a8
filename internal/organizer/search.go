package organizer

import (
	"strings"

	"github.com/starford/taborganizer/internal/models"
)

// Query is a normalized case-insensitive search string. The empty query
// matches everything.
type Query string

// NewQuery lower-cases and trims q.
func NewQuery(q string) Query {
	return Query(strings.ToLower(strings.TrimSpace(q)))
}

func (q Query) in(s string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), string(q))
}

// LinkMatches reports whether the title, description, url or quick note contains q.
func (q Query) LinkMatches(l models.Link) bool {
	if q == "" {
		return true
	}
	return q.in(l.Title) || q.in(l.Description) || q.in(l.URL) || q.in(l.QuickNote)
}

// CategoryMatches reports whether the category name or description
// contains q, or any of its links matches.
func (q Query) CategoryMatches(c *models.Category) bool {
	if q == "" {
		return true
	}
	if q.in(c.Name) || q.in(c.Description) {
		return true
	}
	for _, l := range c.Links {
		if q.LinkMatches(l) {
			return true
		}
	}
	return false
}

// LibraryMatches reports whether the library name contains q, or any of
// its categories matches.
func (q Query) LibraryMatches(lib *models.Library) bool {
	if q == "" {
		return true
	}
	if q.in(lib.Name) {
		return true
	}
	for p := lib.Categories.Oldest(); p != nil; p = p.Next() {
		if q.CategoryMatches(p.Value) {
			return true
		}
	}
	return false
}

// LinkHit is a link in a search view. Matches marks links that match on their own.
type LinkHit struct {
	Index   int         `json:"index"`
	Link    models.Link `json:"link"`
	Matches bool        `json:"matches"`
}

// CategoryHit is a matching category with all of its links.
type CategoryHit struct {
	Key   string    `json:"key"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Links []LinkHit `json:"links"`
}

// LibraryHit is a matching library with its matching categories.
type LibraryHit struct {
	Key        string        `json:"key"`
	Name       string        `json:"name"`
	Icon       string        `json:"icon"`
	Categories []CategoryHit `json:"categories"`
}

// Filter builds the search view of doc: every matching library and,
// within it, every matching category.
func Filter(doc *models.Document, q Query) []LibraryHit {
	out := []LibraryHit{}
	for lp := doc.Libraries.Oldest(); lp != nil; lp = lp.Next() {
		lib := lp.Value
		if !q.LibraryMatches(lib) {
			continue
		}
		hit := LibraryHit{Key: lp.Key, Name: lib.Name, Icon: lib.Icon, Categories: []CategoryHit{}}
		for cp := lib.Categories.Oldest(); cp != nil; cp = cp.Next() {
			cat := cp.Value
			if !q.CategoryMatches(cat) {
				continue
			}
			ch := CategoryHit{Key: cp.Key, Name: cat.Name, Icon: cat.Icon, Links: make([]LinkHit, 0, len(cat.Links))}
			for i, l := range cat.Links {
				ch.Links = append(ch.Links, LinkHit{Index: i, Link: l, Matches: q.LinkMatches(l)})
			}
			hit.Categories = append(hit.Categories, ch)
		}
		out = append(out, hit)
	}
	return out
}

// Search runs Filter over the current document.
func (s *Store) Search(query string) []LibraryHit {
	var out []LibraryHit
	s.Read(func(doc *models.Document) {
		out = Filter(doc, NewQuery(query))
	})
	return out
}
