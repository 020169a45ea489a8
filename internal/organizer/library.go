package organizer

import (
	"fmt"
	"strings"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
)

// CreateLibrary appends a library, makes it current and returns its key.
func (s *Store) CreateLibrary(name, icon string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("library name is required: %w", apperr.ErrValidation)
	}
	if icon == "" {
		icon = models.DefaultLibraryIcon
	}
	var key string
	err := s.Update(func(doc *models.Document) error {
		key = s.newKey(id.LibraryPrefix)
		doc.Libraries.Set(key, models.NewLibrary(name, icon))
		doc.CurrentLibrary = key
		return nil
	})
	return key, err
}

// UpdateLibrary renames and re-icons a library. An empty icon keeps the
// existing one.
func (s *Store) UpdateLibrary(libKey, name, icon string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("library name is required: %w", apperr.ErrValidation)
	}
	return s.Update(func(doc *models.Document) error {
		lib, err := library(doc, libKey)
		if err != nil {
			return err
		}
		lib.Name = name
		if icon != "" {
			lib.Icon = icon
		}
		return nil
	})
}

// DeleteLibrary removes a library with all its categories. The last
// remaining library cannot be deleted.
func (s *Store) DeleteLibrary(libKey string) error {
	return s.Update(func(doc *models.Document) error {
		if _, err := library(doc, libKey); err != nil {
			return err
		}
		if doc.Libraries.Len() <= 1 {
			return apperr.ErrLastLibrary
		}
		doc.Libraries.Delete(libKey)
		if doc.CurrentLibrary == libKey {
			doc.CurrentLibrary = doc.Libraries.Oldest().Key
		}
		return nil
	})
}

// SelectLibrary makes libKey the current library.
func (s *Store) SelectLibrary(libKey string) error {
	return s.Update(func(doc *models.Document) error {
		if _, err := library(doc, libKey); err != nil {
			return err
		}
		doc.CurrentLibrary = libKey
		return nil
	})
}

func library(doc *models.Document, libKey string) (*models.Library, error) {
	lib := doc.Library(libKey)
	if lib == nil {
		return nil, fmt.Errorf("library %s: %w", libKey, apperr.ErrNotFound)
	}
	return lib, nil
}

func category(doc *models.Document, libKey, catKey string) (*models.Category, error) {
	lib, err := library(doc, libKey)
	if err != nil {
		return nil, err
	}
	cat := lib.Category(catKey)
	if cat == nil {
		return nil, fmt.Errorf("category %s/%s: %w", libKey, catKey, apperr.ErrNotFound)
	}
	return cat, nil
}

func link(doc *models.Document, libKey, catKey string, index int) (*models.Link, error) {
	cat, err := category(doc, libKey, catKey)
	if err != nil {
		return nil, err
	}
	l := cat.Link(index)
	if l == nil {
		return nil, fmt.Errorf("link %s/%s[%d]: %w", libKey, catKey, index, apperr.ErrNotFound)
	}
	return l, nil
}
