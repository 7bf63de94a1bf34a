package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the storefront router, mounted at /api/v1/games
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Browse)
	r.Get("/{id}", h.GetByID)

	return r
}

// AdminRoutes returns the games admin router, mounted at /api/admin/games.
// Writes pass through adminOnly.
func (h *Handler) AdminRoutes(adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
