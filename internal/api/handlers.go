package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/organizer"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/sharing"
)

// StatusSource reports the persistence state shown in the UI.
type StatusSource interface {
	Status() persist.Status
	Session() persist.Session
}

// Handler holds API route handlers.
type Handler struct {
	store  *organizer.Store
	status StatusSource
	shares *sharing.Service
	now    func() time.Time
}

// NewHandler creates a new Handler. shares may be nil when no remote is
// configured; share routes then answer 401.
func NewHandler(store *organizer.Store, status StatusSource, shares *sharing.Service) *Handler {
	return &Handler{store: store, status: status, shares: shares, now: time.Now}
}

func libParam(r *http.Request) string { return chi.URLParam(r, "lib") }
func catParam(r *http.Request) string { return chi.URLParam(r, "cat") }

func indexParam(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		return 0, fmt.Errorf("link index must be an integer: %w", apperr.ErrValidation)
	}
	return i, nil
}

// GetDocument handles GET /api/document.
//
//	@Summary		Get the whole document
//	@Tags			document
//	@Produce		json
//	@Success		200	{object}	models.Document
//	@Security		BearerAuth
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Document())
}

// GetStatus handles GET /api/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: persist.StatusLocalOnly.String(), Mode: persist.ModeLocal.String()}
	if h.status != nil {
		sess := h.status.Session()
		resp = StatusResponse{Status: h.status.Status().String(), Mode: sess.Mode.String(), Email: sess.Email}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles GET /api/search.
//
//	@Summary		Filter the document by a case-insensitive query
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Search query"
//	@Success		200	{array}		organizer.LibraryHit
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"results": h.store.Search(r.URL.Query().Get("q")),
	})
}

// ListLibraries handles GET /api/libraries.
func (h *Handler) ListLibraries(w http.ResponseWriter, r *http.Request) {
	out := []LibrarySummary{}
	h.store.Read(func(doc *models.Document) {
		for p := doc.Libraries.Oldest(); p != nil; p = p.Next() {
			out = append(out, LibrarySummary{
				Key:        p.Key,
				Name:       p.Value.Name,
				Icon:       p.Value.Icon,
				Categories: p.Value.Categories.Len(),
				Links:      p.Value.LinkCount(),
				Current:    p.Key == doc.CurrentLibrary,
			})
		}
	})
	writeJSON(w, http.StatusOK, map[string]any{"libraries": out})
}

// CreateLibrary handles POST /api/libraries.
//
//	@Summary		Create a library and make it current
//	@Tags			libraries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LibraryRequest	true	"Library"
//	@Success		201		{object}	KeyResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/libraries [post]
func (h *Handler) CreateLibrary(w http.ResponseWriter, r *http.Request) {
	var req LibraryRequest
	if !decode(w, r, &req) {
		return
	}
	key, err := h.store.CreateLibrary(req.Name, req.Icon)
	if err != nil {
		writeError(w, "create library", err)
		return
	}
	writeJSON(w, http.StatusCreated, KeyResponse{Key: key})
}

// UpdateLibrary handles PUT /api/libraries/{lib}.
func (h *Handler) UpdateLibrary(w http.ResponseWriter, r *http.Request) {
	var req LibraryRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.UpdateLibrary(libParam(r), req.Name, req.Icon); err != nil {
		writeError(w, "update library", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLibrary handles DELETE /api/libraries/{lib}.
//
//	@Summary		Delete a library with its categories
//	@Tags			libraries
//	@Success		204	"Library deleted"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse	"Last library"
//	@Security		BearerAuth
//	@Router			/libraries/{lib} [delete]
func (h *Handler) DeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteLibrary(libParam(r)); err != nil {
		writeError(w, "delete library", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectLibrary handles POST /api/libraries/{lib}/select.
func (h *Handler) SelectLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.store.SelectLibrary(libParam(r)); err != nil {
		writeError(w, "select library", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
