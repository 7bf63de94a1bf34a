package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// ClientFor binds the HCCC client to a session.
type ClientFor func(sess *session.Session) Client

// Handler handles user HTTP requests
type Handler struct {
	service   *Service
	clientFor ClientFor
}

func NewHandler(service *Service, clientFor ClientFor) *Handler {
	return &Handler{service: service, clientFor: clientFor}
}

func (h *Handler) client(r *http.Request) Client {
	return h.clientFor(session.FromContext(r.Context()))
}

// Me handles GET /api/v1/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), h.client(r))
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, user)
}

// List handles GET /api/admin/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state, err := List.ParseQuery(r.URL.Query())
	if err != nil {
		if fields, ok := listview.IsInvalidQuery(err); ok {
			errorhandler.HandleValidation(r.Context(), w, fields)
		} else {
			response.BadRequest(w, err.Error())
		}
		return
	}

	users, p, err := h.service.List(r.Context(), h.client(r), state)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.WithMeta(w, ListResponse{
		Items:  users,
		Window: listview.WindowFor(p),
		Filter: state.Filter,
	}, response.NewMeta(p.Page, p.Limit, p.Total))
}

// Update handles PUT /api/admin/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if req == (UpdateRequest{}) {
		response.BadRequest(w, "Nothing to update")
		return
	}

	user, err := h.service.Update(r.Context(), h.client(r), session.FromContext(r.Context()), id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, user)
}

// Delete handles DELETE /api/admin/users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), h.client(r), session.FromContext(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Block handles PATCH /api/admin/users/{id}/block
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req BlockRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := h.service.SetBlocked(r.Context(), h.client(r), session.FromContext(r.Context()), id, *req.Blocked)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, user)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSelfDelete):
		response.Conflict(w, "You cannot delete your own account")
	case errors.Is(err, ErrSelfBlock):
		response.Conflict(w, "You cannot block your own account")
	case errors.Is(err, ErrSelfDemote):
		response.Conflict(w, "You cannot change your own role")
	default:
		errorhandler.HandleUpstream(r.Context(), w, err)
	}
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "User ID is required")
		return "", false
	}
	return id, true
}
