package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/snapshot"
)

// Snapshot handles POST /api/libraries/{lib}/snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.store.Snapshot(libParam(r), req.Selection, req.Message)
	if err != nil {
		writeError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Export handles GET and POST /api/export. GET exports everything; POST
// may restrict the export to a selection.
//
//	@Summary		Download a full export
//	@Tags			transfer
//	@Produce		json
//	@Success		200	{object}	snapshot.Export
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}
	now := h.now()
	exp, err := h.store.Export(req.Selection, now)
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, snapshot.FileName(now)))
	writeJSON(w, http.StatusOK, exp)
}

// PreviewImport handles POST /api/import/preview. The body is the raw
// file content.
func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	pv, err := h.store.PreviewImport(raw)
	if err != nil {
		writeError(w, "preview import", err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

// Import handles POST /api/import.
//
//	@Summary		Import a full export, legacy export or share snapshot
//	@Tags			transfer
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportRequest	true	"Data and conflict policies"
//	@Success		200		{object}	importer.Result
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Data) == 0 {
		writeError(w, "import", fmt.Errorf("data is required: %w", apperr.ErrValidation))
		return
	}
	def, err := importer.ParsePolicy(string(req.Policy))
	if err != nil {
		writeError(w, "import", fmt.Errorf("%s: %w", err.Error(), apperr.ErrValidation))
		return
	}
	res := importer.Resolution{Default: def, PerLibrary: map[string]importer.Policy{}}
	for key, p := range req.Policies {
		pol, err := importer.ParsePolicy(string(p))
		if err != nil {
			writeError(w, "import", fmt.Errorf("library %s: %s: %w", key, err.Error(), apperr.ErrValidation))
			return
		}
		res.PerLibrary[key] = pol
	}
	out, err := h.store.Import(req.Data, res)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
