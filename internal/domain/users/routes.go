package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminRoutes returns the users admin router, mounted at /api/admin/users.
// Every write passes through adminOnly.
func (h *Handler) AdminRoutes(adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/block", h.Block)
	})

	return r
}
