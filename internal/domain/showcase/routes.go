package showcase

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the storefront router, mounted at /api/v1/showcase
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/events", visible(h, Events))
	r.Get("/winners", visible(h, Winners))

	return r
}

// EventRoutes returns the events admin router, mounted at /api/admin/events
func (h *Handler) EventRoutes(adminOnly func(http.Handler) http.Handler) chi.Router {
	return adminRoutes(h, Events, adminOnly)
}

// WinnerRoutes returns the winners admin router, mounted at /api/admin/winners
func (h *Handler) WinnerRoutes(adminOnly func(http.Handler) http.Handler) chi.Router {
	return adminRoutes(h, Winners, adminOnly)
}

// adminRoutes lets cashiers read and toggle visibility; the rest is
// admin only.
func adminRoutes[R, T, I any](h *Handler, s *Section[R, T, I], adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", list(h, s))
	r.Patch("/{id}/visibility", setVisibility(h, s))

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/", create(h, s))
		r.Put("/{id}", update(h, s))
		r.Delete("/{id}", remove(h, s))
	})

	return r
}
