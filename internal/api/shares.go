package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/sharing"
)

// shareReady reports whether the share service is available, answering 401
// when it is not.
func (h *Handler) shareReady(w http.ResponseWriter) bool {
	if h.shares == nil {
		writeError(w, "share", fmt.Errorf("sharing requires a remote backend: %w", apperr.ErrUnauthorized))
		return false
	}
	return true
}

// PendingShares handles GET /api/shares.
func (h *Handler) PendingShares(w http.ResponseWriter, r *http.Request) {
	if !h.shareReady(w) {
		return
	}
	list, err := h.shares.Pending(r.Context())
	if err != nil {
		writeError(w, "list shares", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shares": list})
}

// SendShare handles POST /api/shares.
//
//	@Summary		Send selected links of a library to another user
//	@Tags			shares
//	@Accept			json
//	@Produce		json
//	@Param			body	body		sharing.SendRequest	true	"Share"
//	@Success		201		{object}	remote.Share
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/shares [post]
func (h *Handler) SendShare(w http.ResponseWriter, r *http.Request) {
	if !h.shareReady(w) {
		return
	}
	var req sharing.SendRequest
	if !decode(w, r, &req) {
		return
	}
	sh, err := h.shares.Send(r.Context(), req)
	if err != nil {
		writeError(w, "send share", err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

// OpenShare handles GET /api/shares/{id}.
func (h *Handler) OpenShare(w http.ResponseWriter, r *http.Request) {
	if !h.shareReady(w) {
		return
	}
	sh, p, err := h.shares.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "open share", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"share": sh, "snapshot": p})
}

// AcceptShare handles POST /api/shares/{id}/accept.
func (h *Handler) AcceptShare(w http.ResponseWriter, r *http.Request) {
	if !h.shareReady(w) {
		return
	}
	var req sharing.AcceptRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}
	mode, err := importer.ParseShareMode(string(req.Mode))
	if err != nil {
		writeError(w, "accept share", fmt.Errorf("%s: %w", err.Error(), apperr.ErrValidation))
		return
	}
	req.Mode = mode
	res, err := h.shares.Accept(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "accept share", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeclineShare handles POST /api/shares/{id}/decline.
func (h *Handler) DeclineShare(w http.ResponseWriter, r *http.Request) {
	if !h.shareReady(w) {
		return
	}
	if err := h.shares.Decline(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "decline share", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
