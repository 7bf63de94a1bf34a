package showcase

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/logger"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// ClientFor binds the HCCC client to a session.
type ClientFor func(sess *session.Session) Client

// Handler serves events and winners. public is an unauthenticated client;
// onChange runs after every successful write and may be nil.
type Handler struct {
	public    Client
	clientFor ClientFor
	onChange  func(ctx context.Context) error
}

func NewHandler(public Client, clientFor ClientFor, onChange func(ctx context.Context) error) *Handler {
	return &Handler{public: public, clientFor: clientFor, onChange: onChange}
}

func (h *Handler) client(r *http.Request) Client {
	return h.clientFor(session.FromContext(r.Context()))
}

func (h *Handler) changed(ctx context.Context) {
	if h.onChange == nil {
		return
	}
	if err := h.onChange(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Showcase cache invalidation failed")
	}
}

func visible[R, T, I any](h *Handler, s *Section[R, T, I]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := parseState(w, r, s.Config)
		if !ok {
			return
		}
		items, p, err := s.Visible(r.Context(), h.public, state)
		if err != nil {
			errorhandler.HandleUpstream(r.Context(), w, err)
			return
		}
		response.WithMeta(w, items, response.NewMeta(p.Page, p.Limit, p.Total))
	}
}

func list[R, T, I any](h *Handler, s *Section[R, T, I]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := parseState(w, r, s.Config)
		if !ok {
			return
		}
		items, p, err := s.List(r.Context(), h.client(r), state)
		if err != nil {
			errorhandler.HandleUpstream(r.Context(), w, err)
			return
		}
		response.WithMeta(w, ListResponse[T]{
			Items:  items,
			Window: listview.WindowFor(p),
			Filter: state.Filter,
		}, response.NewMeta(p.Page, p.Limit, p.Total))
	}
}

func create[R, T, I any](h *Handler, s *Section[R, T, I]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeInput(w, r, s)
		if !ok {
			return
		}
		item, err := s.Create(r.Context(), h.client(r), in)
		if err != nil {
			errorhandler.HandleUpstream(r.Context(), w, err)
			return
		}
		h.changed(r.Context())
		response.Created(w, item)
	}
}

func update[R, T, I any](h *Handler, s *Section[R, T, I]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(w, r)
		if !ok {
			return
		}
		in, ok := decodeInput(w, r, s)
		if !ok {
			return
		}
		item, err := s.Update(r.Context(), h.client(r), id, in)
		if err != nil {
			errorhandler.HandleUpstream(r.Context(), w, err)
			return
		}
		h.changed(r.Context())
		response.OK(w, item)
	}
}

func remove[R, T, I any](h *Handler, s *Section[R, T, I]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(w, r)
		if !ok {
			return
		}
		if err := s.Delete(r.Context(), h.client(r), id); err != nil {
			errorhandler.HandleUpstream(r.Context(), w, err)
			return
		}
		h.changed(r.Context())
		response.NoContent(w)
	}
}

func setVisibility[R, T, I any](h *Handler, s *Section[R, T, I]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(w, r)
		if !ok {
			return
		}
		var req VisibilityRequest
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if errs := validator.Validate(&req); errs != nil {
			response.ValidationError(w, errs)
			return
		}
		item, err := s.SetVisible(r.Context(), h.client(r), id, *req.IsVisible)
		if err != nil {
			errorhandler.HandleUpstream(r.Context(), w, err)
			return
		}
		h.changed(r.Context())
		response.OK(w, item)
	}
}

func decodeInput[R, T, I any](w http.ResponseWriter, r *http.Request, s *Section[R, T, I]) (I, bool) {
	var in I
	if err := response.DecodeJSON(r.Body, &in); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return in, false
	}
	s.normalize(&in)
	if errs := validator.Validate(&in); errs != nil {
		response.ValidationError(w, errs)
		return in, false
	}
	return in, true
}

func itemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "ID is required")
		return "", false
	}
	return id, true
}

func parseState[T any](w http.ResponseWriter, r *http.Request, cfg listview.Config[T]) (listview.State, bool) {
	state, err := cfg.ParseQuery(r.URL.Query())
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
