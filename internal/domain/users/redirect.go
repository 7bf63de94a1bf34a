package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// RedirectStore keeps the post-login redirect per session.
type RedirectStore interface {
	Save(ctx context.Context, sessionKey, target string) error
	Take(ctx context.Context, sessionKey string) (string, error)
}

type RedirectRequest struct {
	Target string `json:"target" validate:"required,max=2048"`
}

// RedirectHandler serves /api/v1/session/redirect
type RedirectHandler struct {
	store RedirectStore
}

func NewRedirectHandler(store RedirectStore) *RedirectHandler {
	return &RedirectHandler{store: store}
}

func (h *RedirectHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Take)
	r.Put("/", h.Save)
	return r
}

// Take handles GET /api/v1/session/redirect. The stored value is consumed.
func (h *RedirectHandler) Take(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	target, err := h.store.Take(r.Context(), sess.Key())
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read redirect", err)
		return
	}
	if target == "" {
		target = "/"
	}
	response.OK(w, RedirectRequest{Target: target})
}

// Save handles PUT /api/v1/session/redirect
func (h *RedirectHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req RedirectRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sess := session.FromContext(r.Context())
	if err := h.store.Save(r.Context(), sess.Key(), req.Target); err != nil {
		if errors.Is(err, session.ErrInvalidRedirect) {
			response.ValidationError(w, map[string]string{"target": "Must be a relative path"})
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save redirect", err)
		return
	}
	response.NoContent(w)
}
