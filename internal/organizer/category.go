package organizer

import (
	"fmt"
	"strings"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
)

// CategoryInput carries the editable fields of a category. Task and Links
// are only written when non-nil, so an update keeps them by default.
type CategoryInput struct {
	Name        string
	Icon        string
	Color       string
	Progress    string
	Description string
	Task        *string
	Links       *[]models.Link
}

// SaveCategory updates the category under catKey in place, or inserts a
// new category when catKey is empty or unknown. It returns the key.
func (s *Store) SaveCategory(libKey, catKey string, in CategoryInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return "", fmt.Errorf("category name is required: %w", apperr.ErrValidation)
	}
	if in.Icon == "" {
		in.Icon = models.DefaultCategoryIcon
	}
	if in.Color == "" {
		in.Color = models.DefaultCategoryColor
	}

	key := catKey
	err := s.Update(func(doc *models.Document) error {
		lib, err := library(doc, libKey)
		if err != nil {
			return err
		}
		cat := lib.Category(catKey)
		if cat == nil {
			key = s.newKey(id.CategoryPrefix)
			cat = &models.Category{Links: []models.Link{}}
			lib.Categories.Set(key, cat)
		}
		cat.Name = in.Name
		cat.Icon = in.Icon
		cat.Color = in.Color
		cat.Progress = in.Progress
		cat.Description = in.Description
		if in.Task != nil {
			cat.Task = *in.Task
		}
		if in.Links != nil {
			cat.Links = append([]models.Link{}, (*in.Links)...)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// DeleteCategory removes a category and all its links.
func (s *Store) DeleteCategory(libKey, catKey string) error {
	return s.Update(func(doc *models.Document) error {
		if _, err := category(doc, libKey, catKey); err != nil {
			return err
		}
		doc.Library(libKey).Categories.Delete(catKey)
		return nil
	})
}

// SetCategoryTask replaces the category's task note.
func (s *Store) SetCategoryTask(libKey, catKey, task string) error {
	return s.Update(func(doc *models.Document) error {
		cat, err := category(doc, libKey, catKey)
		if err != nil {
			return err
		}
		cat.Task = task
		return nil
	})
}

// MoveCategory moves a category with its content to the end of another
// library, keeping its key unless the target already uses it. Moving
// within the same library is a no-op.
func (s *Store) MoveCategory(srcLib, catKey, dstLib string) error {
	if srcLib == dstLib {
		return nil
	}
	return s.Update(func(doc *models.Document) error {
		cat, err := category(doc, srcLib, catKey)
		if err != nil {
			return err
		}
		dst, err := library(doc, dstLib)
		if err != nil {
			return err
		}
		doc.Library(srcLib).Categories.Delete(catKey)
		key := catKey
		if dst.Category(key) != nil {
			key = s.newKey(id.CategoryPrefix)
		}
		dst.Categories.Set(key, cat)
		return nil
	})
}

// ReorderCategories moves fromKey into the display slot of toKey, shifting
// the categories in between by one.
func (s *Store) ReorderCategories(libKey, fromKey, toKey string) error {
	if fromKey == toKey {
		return nil
	}
	return s.Update(func(doc *models.Document) error {
		lib, err := library(doc, libKey)
		if err != nil {
			return err
		}
		if lib.Category(fromKey) == nil || lib.Category(toKey) == nil {
			return fmt.Errorf("reorder %s -> %s: %w", fromKey, toKey, apperr.ErrNotFound)
		}
		if indexOf(lib.CategoryKeys(), fromKey) < indexOf(lib.CategoryKeys(), toKey) {
			return lib.Categories.MoveAfter(fromKey, toKey)
		}
		return lib.Categories.MoveBefore(fromKey, toKey)
	})
}

func indexOf(keys []string, k string) int {
	for i, key := range keys {
		if key == k {
			return i
		}
	}
	return -1
}
