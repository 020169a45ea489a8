package api

import (
	"fmt"
	"net/http"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/organizer"
)

// AddLink handles POST /api/libraries/{lib}/categories/{cat}/links.
//
//	@Summary		Append a link to a category
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LinkRequest	true	"Link"
//	@Success		201		{object}	IndexResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/libraries/{lib}/categories/{cat}/links [post]
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decode(w, r, &req) {
		return
	}
	idx, err := h.store.AddLink(libParam(r), catParam(r), req.input())
	if err != nil {
		writeError(w, "add link", err)
		return
	}
	writeJSON(w, http.StatusCreated, IndexResponse{Index: idx})
}

// EditLink handles PUT /api/libraries/{lib}/categories/{cat}/links/{idx}.
func (h *Handler) EditLink(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, "edit link", err)
		return
	}
	var req LinkRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.EditLink(libParam(r), catParam(r), idx, req.input()); err != nil {
		writeError(w, "edit link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLink handles DELETE /api/libraries/{lib}/categories/{cat}/links/{idx}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, "delete link", err)
		return
	}
	if err := h.store.DeleteLink(libParam(r), catParam(r), idx); err != nil {
		writeError(w, "delete link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveLink handles POST /api/libraries/{lib}/categories/{cat}/links/{idx}/move.
func (h *Handler) MoveLink(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, "move link", err)
		return
	}
	req := MoveLinkRequest{Index: -1}
	if !decode(w, r, &req) {
		return
	}
	if req.Library == "" {
		req.Library = libParam(r)
	}
	if err := h.store.MoveLink(libParam(r), catParam(r), idx, req.Library, req.Category, req.Index); err != nil {
		writeError(w, "move link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderLinks handles POST /api/libraries/{lib}/categories/{cat}/links/reorder.
func (h *Handler) ReorderLinks(w http.ResponseWriter, r *http.Request) {
	var req ReorderLinksRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.ReorderLinks(libParam(r), catParam(r), req.From, req.To); err != nil {
		writeError(w, "reorder links", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /api/libraries/{lib}/categories/{cat}/links/{idx}/status.
//
//	@Summary		Set one status flag or the whole progress ladder
//	@Tags			links
//	@Accept			json
//	@Param			body	body	StatusRequest	true	"Either field+value or level"
//	@Success		204		"Status updated"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/libraries/{lib}/categories/{cat}/links/{idx}/status [put]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, "set status", err)
		return
	}
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	lib, cat := libParam(r), catParam(r)
	switch {
	case req.Level != nil:
		level, perr := models.ParseLevel(*req.Level)
		if perr != nil {
			writeError(w, "set status", fmt.Errorf("%s: %w", perr.Error(), apperr.ErrValidation))
			return
		}
		err = h.store.SetStatusLevel(lib, cat, idx, level)
	case req.Field != nil:
		field, perr := models.ParseField(*req.Field)
		if perr != nil {
			writeError(w, "set status", fmt.Errorf("%s: %w", perr.Error(), apperr.ErrValidation))
			return
		}
		err = h.store.SetStatusField(lib, cat, idx, field, req.Value)
	default:
		err = fmt.Errorf("field or level is required: %w", apperr.ErrValidation)
	}
	if err != nil {
		writeError(w, "set status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetNotes handles PUT /api/libraries/{lib}/categories/{cat}/links/{idx}/notes.
// A full note also replaces the quick note with its plain-text preview,
// unless the request sets quickNote too.
func (h *Handler) SetNotes(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, "set notes", err)
		return
	}
	var req NotesRequest
	if !decode(w, r, &req) {
		return
	}
	in := organizer.NotesInput{QuickNote: req.QuickNote, LinkNotes: req.LinkNotes, FullNote: req.FullNote}
	if err := h.store.SetNotes(libParam(r), catParam(r), idx, in); err != nil {
		writeError(w, "set notes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Embed handles GET /api/libraries/{lib}/categories/{cat}/links/{idx}/embed.
func (h *Handler) Embed(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, "embed", err)
		return
	}
	var (
		url   string
		found bool
	)
	h.store.Read(func(doc *models.Document) {
		if l := doc.Category(libParam(r), catParam(r)).Link(idx); l != nil {
			url, found = l.URL, true
		}
	})
	if !found {
		writeError(w, "embed", fmt.Errorf("link %d: %w", idx, apperr.ErrNotFound))
		return
	}
	embed, ok := organizer.EmbedInfo(url)
	writeJSON(w, http.StatusOK, map[string]any{"embeddable": ok, "embed": embed})
}
