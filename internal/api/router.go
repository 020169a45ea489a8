package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/document", h.GetDocument)
	r.Get("/status", h.GetStatus)
	r.Get("/search", h.Search)

	r.Route("/libraries", func(r chi.Router) {
		r.Get("/", h.ListLibraries)
		r.Post("/", h.CreateLibrary)
		r.Route("/{lib}", func(r chi.Router) {
			r.Put("/", h.UpdateLibrary)
			r.Delete("/", h.DeleteLibrary)
			r.Post("/select", h.SelectLibrary)
			r.Post("/snapshot", h.Snapshot)

			r.Post("/categories", h.CreateCategory)
			r.Post("/categories/reorder", h.ReorderCategories)
			r.Route("/categories/{cat}", func(r chi.Router) {
				r.Put("/", h.UpdateCategory)
				r.Delete("/", h.DeleteCategory)
				r.Put("/task", h.SetCategoryTask)
				r.Post("/move", h.MoveCategory)

				r.Post("/links", h.AddLink)
				r.Post("/links/reorder", h.ReorderLinks)
				r.Route("/links/{idx}", func(r chi.Router) {
					r.Put("/", h.EditLink)
					r.Delete("/", h.DeleteLink)
					r.Post("/move", h.MoveLink)
					r.Put("/status", h.SetStatus)
					r.Put("/notes", h.SetNotes)
					r.Get("/embed", h.Embed)
				})
			})
		})
	})

	// Backup and restore.
	r.Get("/export", h.Export)
	r.Post("/export", h.Export)
	r.Post("/import/preview", h.PreviewImport)
	r.Post("/import", h.Import)

	// Sharing.
	r.Get("/shares", h.PendingShares)
	r.Post("/shares", h.SendShare)
	r.Get("/shares/{id}", h.OpenShare)
	r.Post("/shares/{id}/accept", h.AcceptShare)
	r.Post("/shares/{id}/decline", h.DeclineShare)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
