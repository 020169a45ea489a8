package api

import (
	"net/http"
)

// CreateCategory handles POST /api/libraries/{lib}/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	key, err := h.store.SaveCategory(libParam(r), "", req.input())
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, KeyResponse{Key: key})
}

// UpdateCategory handles PUT /api/libraries/{lib}/categories/{cat}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	key, err := h.store.SaveCategory(libParam(r), catParam(r), req.input())
	if err != nil {
		writeError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, KeyResponse{Key: key})
}

// DeleteCategory handles DELETE /api/libraries/{lib}/categories/{cat}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(libParam(r), catParam(r)); err != nil {
		writeError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCategoryTask handles PUT /api/libraries/{lib}/categories/{cat}/task.
func (h *Handler) SetCategoryTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.SetCategoryTask(libParam(r), catParam(r), req.Task); err != nil {
		writeError(w, "set task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveCategory handles POST /api/libraries/{lib}/categories/{cat}/move.
func (h *Handler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	var req MoveCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.MoveCategory(libParam(r), catParam(r), req.Library); err != nil {
		writeError(w, "move category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderCategories handles POST /api/libraries/{lib}/categories/reorder.
func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req ReorderCategoriesRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.ReorderCategories(libParam(r), req.From, req.To); err != nil {
		writeError(w, "reorder categories", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
