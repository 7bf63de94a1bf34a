package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/live"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// Client is the session-bound HCCC client used by the handlers.
type Client interface {
	Upstream
	MyTokens(ctx context.Context) ([]hccc.TokenBalance, error)
}

// ClientFor binds the HCCC client to a session.
type ClientFor func(sess *session.Session) Client

// Handler serves the token balance endpoints.
type Handler struct {
	service   *Service
	clientFor ClientFor
	live      *live.Server
}

func NewHandler(service *Service, clientFor ClientFor, liveSrv *live.Server) *Handler {
	return &Handler{service: service, clientFor: clientFor, live: liveSrv}
}

// Mine handles GET /api/v1/me/tokens
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	list, err := h.clientFor(sess).MyTokens(r.Context())
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}

	items := make([]View, 0, len(list))
	for _, b := range FromHCCCList(list) {
		items = append(items, View{
			Balance:          b,
			Key:              b.Key().String(),
			Displayed:        b.Tokens,
			TotalWithPending: b.TotalWithPending(),
			Phase:            PhaseConfirmed,
		})
	}
	response.OK(w, items)
}

// List handles GET /api/admin/users/{id}/tokens
// The upstream list is not paginated: the whole set is loaded into the
// operator's workspace and filtered, sorted and paged here.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "id")

	state, err := BalanceList.ParseQuery(r.URL.Query())
	if err != nil {
		if fields, ok := listview.IsInvalidQuery(err); ok {
			errorhandler.HandleValidation(ctx, w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	ws := h.open(r)
	defer ws.Release()

	views, err := ws.LoadUser(ctx, userID, BalanceList.Query(state))
	if err != nil {
		errorhandler.HandleUpstream(ctx, w, err)
		return
	}

	page, p := listPage(views, state)
	response.WithMeta(w, page, response.NewMeta(p.Page, p.Limit, p.Total))
}

// listPage applies state to views and returns the page together with the
// pagination clamped to the filtered count.
func listPage(views []View, state listview.State) (ListResponse, listview.Pagination) {
	byKey := make(map[Key]View, len(views))
	balances := make([]Balance, 0, len(views))
	for _, v := range views {
		byKey[v.Balance.Key()] = v
		balances = append(balances, v.Balance)
	}

	res := BalanceList.Apply(balances, state.Filter, len(views))
	state.Page.Total = res.FilteredCount
	state.Page = state.Page.Clamp()

	items := make([]View, 0, state.Page.Limit)
	for _, b := range listview.Paginate(res.Items, state.Page) {
		items = append(items, byKey[b.Key()])
	}
	return ListResponse{
		Items:       items,
		Window:      listview.WindowFor(state.Page),
		Filter:      state.Filter,
		ServerTotal: res.ServerTotal,
	}, state.Page
}

// Adjust handles POST /api/admin/users/{id}/tokens/adjust
// The adjustment is issued in the background; 202 carries the optimistic
// view and the outcome arrives on the live socket.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ws := h.open(r)
	defer ws.Release()

	key := Key{UserID: chi.URLParam(r, "id"), GameID: req.GameID, Location: req.Location}
	b, err := h.confirmed(r.Context(), ws, key)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	view, err := ws.ApplyDelta(r.Context(), b, req.Delta)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}
	response.Accepted(w, view)
}

// SetValue handles PUT /api/admin/users/{id}/tokens/value
func (h *Handler) SetValue(w http.ResponseWriter, r *http.Request) {
	var req SetValueRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ws := h.open(r)
	defer ws.Release()

	key := Key{UserID: chi.URLParam(r, "id"), GameID: req.GameID, Location: req.Location}
	b, err := h.confirmed(r.Context(), ws, key)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	view, err := ws.SetValue(r.Context(), b, *req.Tokens)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}
	response.Accepted(w, view)
}

// Live handles GET /api/admin/tokens/live
//
// Client frames: {"type":"load","data":{"userId"}},
// {"type":"adjust","data":{"userId","gameId","location","delta"}} and
// {"type":"set","data":{"userId","gameId","location","tokens"}}.
// Server frames carry overlay events; their type is the event type.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	conn, err := h.live.Upgrade(w, r, "tokens")
	if err != nil {
		return
	}

	ws := h.service.Open(sess, h.clientFor(sess))
	events, unsubscribe := h.service.Hub().Subscribe(ws.Key())
	defer func() {
		unsubscribe()
		ws.Release()
	}()

	go func() {
		for ev := range events {
			conn.Send(string(ev.Type), ev)
		}
	}()

	ctx := conn.Context()
	conn.ReadLoop(func(msg live.Message) {
		if err := h.handleFrame(ctx, ws, msg); err != nil {
			conn.Send("error", map[string]string{"type": msg.Type, "message": frameError(err)})
		}
	})
}

func (h *Handler) handleFrame(ctx context.Context, ws *Workspace, msg live.Message) error {
	switch msg.Type {
	case "load":
		var in liveLoad
		if err := decodeFrame(msg.Data, &in); err != nil {
			return err
		}
		// The result is delivered as a "loaded" event.
		_, err := ws.LoadUser(ctx, in.UserID, nil)
		return err

	case "adjust", "set":
		var in liveAdjust
		if err := decodeFrame(msg.Data, &in); err != nil {
			return err
		}
		b, err := h.confirmed(ctx, ws, Key{UserID: in.UserID, GameID: in.GameID, Location: in.Location})
		if err != nil {
			return err
		}
		if msg.Type == "set" {
			if in.Tokens == nil {
				return errFrame("tokens is required")
			}
			_, err = ws.SetValue(ctx, b, *in.Tokens)
			return err
		}
		if in.Delta == 0 {
			return errFrame("delta must not be zero")
		}
		_, err = ws.ApplyDelta(ctx, b, in.Delta)
		return err

	default:
		return errFrame("unknown frame type")
	}
}

type errFrame string

func (e errFrame) Error() string { return string(e) }

func decodeFrame(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return errFrame("data is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errFrame("malformed data")
	}
	if errs := validator.Validate(v); errs != nil {
		for field, msg := range errs {
			return errFrame(field + ": " + msg)
		}
	}
	return nil
}

func frameError(err error) string {
	var fe errFrame
	if errors.As(err, &fe) {
		return string(fe)
	}
	switch {
	case errors.Is(err, ErrDecrementDisabled):
		return "Cannot decrement below 5 tokens"
	case errors.Is(err, ErrUnknownBalance):
		return "Balance not found"
	}
	return hccc.MessageOf(err)
}

func (h *Handler) open(r *http.Request) *Workspace {
	sess := session.FromContext(r.Context())
	return h.service.Open(sess, h.clientFor(sess))
}

// confirmed returns the confirmed balance for key, loading the user's
// balances first when the workspace has not seen them.
func (h *Handler) confirmed(ctx context.Context, ws *Workspace, key Key) (Balance, error) {
	if err := validKey(key); err != nil {
		return Balance{}, err
	}
	if b, ok := ws.Overlay().Balance(key); ok {
		return b, nil
	}
	if _, err := ws.LoadUser(ctx, key.UserID, nil); err != nil {
		return Balance{}, err
	}
	if b, ok := ws.Overlay().Balance(key); ok {
		return b, nil
	}
	return Balance{}, ErrUnknownBalance
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDecrementDisabled):
		response.Conflict(w, "Cannot decrement below 5 tokens")
	case errors.Is(err, ErrUnknownBalance):
		response.NotFound(w, "Balance not found")
	case errors.Is(err, ErrInvalidKey):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrWorkspaceClosed):
		response.ServiceUnavailable(w, "Console is shutting down")
	default:
		errorhandler.HandleUpstream(ctx, w, err)
	}
}
