package tokens

import (
	"github.com/go-chi/chi/v5"
)

// UserRoutes returns the per-user balance router, mounted at
// /api/admin/users/{id}/tokens
func (h *Handler) UserRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/adjust", h.Adjust)
	r.Put("/value", h.SetValue)

	return r
}

// LiveRoutes returns the live socket router, mounted at /api/admin/tokens
func (h *Handler) LiveRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/live", h.Live)
	return r
}
