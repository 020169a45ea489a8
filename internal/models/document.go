// Package models defines the document tree of the organizer:
// libraries own categories, categories own an ordered list of links.
package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Display defaults applied when a field is absent.
const (
	DefaultLibraryName   = "General"
	DefaultLibraryIcon   = "📁"
	DefaultCategoryIcon  = "📁"
	DefaultCategoryColor = "#4a9eff"
	DefaultLinkTitle     = "Untitled"
)

// Note length limits, counted in runes.
const (
	MaxQuickNote = 100
	MaxLinkNotes = 500
)

// Libraries maps library keys to libraries in display order.
type Libraries = orderedmap.OrderedMap[string, *Library]

// Categories maps category keys to categories in display order.
type Categories = orderedmap.OrderedMap[string, *Category]

// Document is the root aggregate persisted as a single JSON blob.
type Document struct {
	Libraries      *Libraries `json:"libraries"`
	CurrentLibrary string     `json:"currentLibrary"`
}

// Library is a named group of categories.
type Library struct {
	Name       string      `json:"name"`
	Icon       string      `json:"icon"`
	Categories *Categories `json:"categories"`
}

// Category groups an ordered list of links.
type Category struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Progress    string `json:"progress"`
	Description string `json:"description"`
	Task        string `json:"task"`
	Links       []Link `json:"links"`
}

// Link is a single bookmarked URL with its progress record and notes.
type Link struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Status      Status `json:"status"`
	QuickNote   string `json:"quickNote"`
	FullNote    string `json:"fullNote"`
	LinkNotes   string `json:"linkNotes"`
}

// NewDocument returns a document with no libraries.
func NewDocument() *Document {
	return &Document{Libraries: NewLibraries()}
}

// NewLibraries returns an empty ordered library map.
func NewLibraries() *Libraries {
	return orderedmap.New[string, *Library]()
}

// NewCategories returns an empty ordered category map.
func NewCategories() *Categories {
	return orderedmap.New[string, *Category]()
}

// NewLibrary returns an empty library.
func NewLibrary(name, icon string) *Library {
	return &Library{Name: name, Icon: icon, Categories: NewCategories()}
}

// Library returns the library stored under key, or nil.
func (d *Document) Library(key string) *Library {
	if d == nil || d.Libraries == nil {
		return nil
	}
	lib, _ := d.Libraries.Get(key)
	return lib
}

// Current returns the active library, or nil when currentLibrary dangles.
func (d *Document) Current() *Library {
	return d.Library(d.CurrentLibrary)
}

// Category resolves a category by library and category key.
func (d *Document) Category(libKey, catKey string) *Category {
	lib := d.Library(libKey)
	if lib == nil {
		return nil
	}
	return lib.Category(catKey)
}

// LibraryKeys returns library keys in display order.
func (d *Document) LibraryKeys() []string {
	if d == nil || d.Libraries == nil {
		return nil
	}
	keys := make([]string, 0, d.Libraries.Len())
	for p := d.Libraries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// CategoryCount returns the number of categories across all libraries.
func (d *Document) CategoryCount() int {
	n := 0
	for p := d.Libraries.Oldest(); p != nil; p = p.Next() {
		if p.Value.Categories != nil {
			n += p.Value.Categories.Len()
		}
	}
	return n
}

// Category returns the category stored under key, or nil.
func (l *Library) Category(key string) *Category {
	if l == nil || l.Categories == nil {
		return nil
	}
	cat, _ := l.Categories.Get(key)
	return cat
}

// CategoryKeys returns category keys in display order.
func (l *Library) CategoryKeys() []string {
	if l == nil || l.Categories == nil {
		return nil
	}
	keys := make([]string, 0, l.Categories.Len())
	for p := l.Categories.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// LinkCount returns the number of links across all categories of l.
func (l *Library) LinkCount() int {
	n := 0
	for p := l.Categories.Oldest(); p != nil; p = p.Next() {
		n += len(p.Value.Links)
	}
	return n
}

// Link returns a pointer to the link at index i, or nil when out of range.
func (c *Category) Link(i int) *Link {
	if c == nil || i < 0 || i >= len(c.Links) {
		return nil
	}
	return &c.Links[i]
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
