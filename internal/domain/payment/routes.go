package payment

import (
	"github.com/go-chi/chi/v5"
)

// CheckoutRoutes returns the storefront checkout router, mounted at
// /api/v1/checkout
func (h *Handler) CheckoutRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Checkout)
	r.Post("/confirm", h.Confirm)
	r.Get("/{intentID}/status", h.Status)

	return r
}

// AdminRoutes returns the admin payments router, mounted at
// /api/admin/payments
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/overview", h.Overview)
	r.Get("/live", h.Live)

	return r
}
