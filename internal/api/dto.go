package api

import (
	"encoding/json"

	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/organizer"
	"github.com/starford/taborganizer/internal/snapshot"
)

// LibraryRequest is the body for creating or updating a library.
type LibraryRequest struct {
	Name string `json:"name" example:"Reading" validate:"required"`
	Icon string `json:"icon" example:"📚"`
}

// LibrarySummary is one entry of the library list.
type LibrarySummary struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Categories int    `json:"categories"`
	Links      int    `json:"links"`
	Current    bool   `json:"current"`
}

// KeyResponse returns the key of a created entity.
type KeyResponse struct {
	Key string `json:"key"`
}

// IndexResponse returns the index of a created link.
type IndexResponse struct {
	Index int `json:"index"`
}

// CategoryRequest is the body for creating or updating a category.
type CategoryRequest struct {
	Name        string         `json:"name" validate:"required"`
	Icon        string         `json:"icon"`
	Color       string         `json:"color"`
	Progress    string         `json:"progress"`
	Description string         `json:"description"`
	Task        *string        `json:"task,omitempty"`
	Links       *[]models.Link `json:"links,omitempty"`
}

func (c CategoryRequest) input() organizer.CategoryInput {
	return organizer.CategoryInput{
		Name:        c.Name,
		Icon:        c.Icon,
		Color:       c.Color,
		Progress:    c.Progress,
		Description: c.Description,
		Task:        c.Task,
		Links:       c.Links,
	}
}

// TaskRequest sets a category task.
type TaskRequest struct {
	Task string `json:"task"`
}

// MoveCategoryRequest moves a category to another library.
type MoveCategoryRequest struct {
	Library string `json:"library" validate:"required"`
}

// ReorderCategoriesRequest moves category From into the slot of To.
type ReorderCategoriesRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LinkRequest is the body for adding or editing a link.
type LinkRequest struct {
	URL         string         `json:"url" validate:"required"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Status      *models.Status `json:"status,omitempty"`
	QuickNote   *string        `json:"quickNote,omitempty"`
	FullNote    *string        `json:"fullNote,omitempty"`
	LinkNotes   *string        `json:"linkNotes,omitempty"`
}

func (l LinkRequest) input() organizer.LinkInput {
	return organizer.LinkInput{
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		Icon:        l.Icon,
		Status:      l.Status,
		QuickNote:   l.QuickNote,
		FullNote:    l.FullNote,
		LinkNotes:   l.LinkNotes,
	}
}

// MoveLinkRequest moves a link to a position in another category.
type MoveLinkRequest struct {
	Library  string `json:"library"`
	Category string `json:"category"`
	Index    int    `json:"index"`
}

// ReorderLinksRequest moves the link at From so it ends at To.
type ReorderLinksRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// StatusRequest sets one flag (Field + Value) or the whole ladder (Level).
type StatusRequest struct {
	Field *string `json:"field,omitempty" example:"watched"`
	Value bool    `json:"value"`
	Level *string `json:"level,omitempty" example:"understood"`
}

// NotesRequest updates any of the three notes of a link.
type NotesRequest struct {
	QuickNote *string `json:"quickNote,omitempty"`
	LinkNotes *string `json:"linkNotes,omitempty"`
	FullNote  *string `json:"fullNote,omitempty"`
}

// SnapshotRequest selects the links of a share snapshot.
type SnapshotRequest struct {
	Selection snapshot.Selection `json:"selection"`
	Message   string             `json:"message"`
}

// ExportRequest selects what a full export contains.
type ExportRequest struct {
	Selection snapshot.ExportSelection `json:"selection"`
}

// ImportRequest carries import data and conflict decisions.
type ImportRequest struct {
	Data     json.RawMessage            `json:"data" validate:"required"`
	Policy   importer.Policy            `json:"policy"`
	Policies map[string]importer.Policy `json:"policies"`
}

// StatusResponse reports the persistence state.
type StatusResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Email  string `json:"email,omitempty"`
}
