package catalog

import (
	"maps"
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

// Handler handles game HTTP requests
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

// Browse handles GET /api/v1/games
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	state, ok := parseState(w, r)
	if !ok {
		return
	}

	cards, p, err := h.service.Browse(r.Context(), state)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.WithMeta(w, cards, response.NewMeta(p.Page, p.Limit, p.Total))
}

// GetByID handles GET /api/v1/games/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	game, err := h.service.Get(r.Context(), id)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, CardFrom(*game))
}

// List handles GET /api/admin/games
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state, ok := parseState(w, r)
	if !ok {
		return
	}

	games, p, err := h.service.List(r.Context(), h.client(r), state)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.WithMeta(w, ListResponse{
		Items:  games,
		Window: listview.WindowFor(p),
		Filter: state.Filter,
	}, response.NewMeta(p.Page, p.Limit, p.Total))
}

// Create handles POST /api/admin/games
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGame(w, r)
	if !ok {
		return
	}

	game, err := h.service.Create(r.Context(), h.client(r), req)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.Created(w, game)
}

// Update handles PUT /api/admin/games/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	req, ok := decodeGame(w, r)
	if !ok {
		return
	}

	game, err := h.service.Update(r.Context(), h.client(r), id, req)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, game)
}

// Delete handles DELETE /api/admin/games/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), h.client(r), id); err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

func decodeGame(w http.ResponseWriter, r *http.Request) (*GameRequest, bool) {
	var req GameRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return nil, false
	}

	errs := req.Normalize()
	if tagErrs := validator.Validate(&req); tagErrs != nil {
		if errs == nil {
			errs = tagErrs
		} else {
			maps.Copy(errs, tagErrs)
		}
	}
	if errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return nil, false
	}
	return &req, true
}

func gameID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Game ID is required")
		return "", false
	}
	return id, true
}

func parseState(w http.ResponseWriter, r *http.Request) (listview.State, bool) {
	state, err := List.ParseQuery(r.URL.Query())
	if err != nil {
		if fields, ok := listview.IsInvalidQuery(err); ok {
			errorhandler.HandleValidation(r.Context(), w, fields)
		} else {
			response.BadRequest(w, err.Error())
		}
		return state, false
	}
	return state, true
}
