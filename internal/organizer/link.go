package organizer

import (
	"fmt"
	"strings"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/models"
)

// LinkInput carries the editable fields of a link. Status and the notes
// are only written when non-nil, so an edit keeps them by default.
type LinkInput struct {
	URL         string
	Title       string
	Description string
	Icon        string
	Status      *models.Status
	QuickNote   *string
	FullNote    *string
	LinkNotes   *string
}

func (in LinkInput) apply(l *models.Link) {
	l.URL = in.URL
	l.Title = in.Title
	if l.Title == "" {
		l.Title = models.DefaultLinkTitle
	}
	l.Description = in.Description
	l.Icon = in.Icon
	if in.Status != nil {
		l.Status = *in.Status
	}
	if in.QuickNote != nil {
		l.QuickNote = models.Truncate(*in.QuickNote, models.MaxQuickNote)
	}
	if in.FullNote != nil {
		l.FullNote = *in.FullNote
	}
	if in.LinkNotes != nil {
		l.LinkNotes = models.Truncate(*in.LinkNotes, models.MaxLinkNotes)
	}
}

func (in *LinkInput) validate() error {
	in.URL = strings.TrimSpace(in.URL)
	if in.URL == "" {
		return fmt.Errorf("link url is required: %w", apperr.ErrValidation)
	}
	in.Title = strings.TrimSpace(in.Title)
	return nil
}

// AddLink appends a link with an all-false status and returns its index.
func (s *Store) AddLink(libKey, catKey string, in LinkInput) (int, error) {
	if err := in.validate(); err != nil {
		return -1, err
	}
	idx := -1
	err := s.Update(func(doc *models.Document) error {
		cat, err := category(doc, libKey, catKey)
		if err != nil {
			return err
		}
		var l models.Link
		in.apply(&l)
		cat.Links = append(cat.Links, l)
		idx = len(cat.Links) - 1
		return nil
	})
	return idx, err
}

// EditLink replaces the url, title, description and icon of a link and
// keeps its status and notes unless in overrides them.
func (s *Store) EditLink(libKey, catKey string, index int, in LinkInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.Update(func(doc *models.Document) error {
		l, err := link(doc, libKey, catKey, index)
		if err != nil {
			return err
		}
		in.apply(l)
		return nil
	})
}

// DeleteLink removes the link at index. Indices shift after any reorder,
// so callers must resolve them against the current document.
func (s *Store) DeleteLink(libKey, catKey string, index int) error {
	return s.Update(func(doc *models.Document) error {
		if _, err := link(doc, libKey, catKey, index); err != nil {
			return err
		}
		cat := doc.Category(libKey, catKey)
		cat.Links = append(cat.Links[:index], cat.Links[index+1:]...)
		return nil
	})
}

// MoveLink removes a link and inserts it at dstIndex of the target
// category, counted after the removal. An index past the end, or a
// negative one, appends.
func (s *Store) MoveLink(srcLib, srcCat string, srcIndex int, dstLib, dstCat string, dstIndex int) error {
	return s.Update(func(doc *models.Document) error {
		l, err := link(doc, srcLib, srcCat, srcIndex)
		if err != nil {
			return err
		}
		dst, err := category(doc, dstLib, dstCat)
		if err != nil {
			return err
		}
		moved := *l
		src := doc.Category(srcLib, srcCat)
		src.Links = append(src.Links[:srcIndex], src.Links[srcIndex+1:]...)
		dst.Links = insertAt(dst.Links, dstIndex, moved)
		return nil
	})
}

// ReorderLinks moves the link at from so that it ends at index to. The
// target index is clamped to the list.
func (s *Store) ReorderLinks(libKey, catKey string, from, to int) error {
	return s.Update(func(doc *models.Document) error {
		l, err := link(doc, libKey, catKey, from)
		if err != nil {
			return err
		}
		moved := *l
		cat := doc.Category(libKey, catKey)
		cat.Links = append(cat.Links[:from], cat.Links[from+1:]...)
		if to < 0 {
			to = 0
		}
		cat.Links = insertAt(cat.Links, to, moved)
		return nil
	})
}

func insertAt(links []models.Link, i int, l models.Link) []models.Link {
	if i < 0 || i >= len(links) {
		return append(links, l)
	}
	links = append(links, models.Link{})
	copy(links[i+1:], links[i:])
	links[i] = l
	return links
}
