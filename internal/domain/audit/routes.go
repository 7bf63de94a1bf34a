package audit

import "github.com/go-chi/chi/v5"

// Routes returns the audit router, mounted at /api/admin/audit
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/adjustments", h.List)
	return r
}
