package payment

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/live"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// ClientFor binds the HCCC client to a session.
type ClientFor func(sess *session.Session) Client

// Handler handles payment HTTP requests
type Handler struct {
	service   *Service
	clientFor ClientFor
	live      *live.Server
	debounce  time.Duration
}

func NewHandler(service *Service, clientFor ClientFor, liveSrv *live.Server, debounce time.Duration) *Handler {
	return &Handler{service: service, clientFor: clientFor, live: liveSrv, debounce: debounce}
}

func (h *Handler) client(r *http.Request) Client {
	return h.clientFor(session.FromContext(r.Context()))
}

// Checkout handles POST /api/v1/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if !req.Price.IsPositive() {
		response.ValidationError(w, map[string]string{"price": "Must be greater than 0"})
		return
	}

	intent, err := h.service.Checkout(r.Context(), h.client(r), &req)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.Created(w, intent)
}

// Confirm handles POST /api/v1/checkout/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Confirm(r.Context(), h.client(r), req.PaymentIntentID, req.Wait)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Status handles GET /api/v1/checkout/{intentID}/status
// This is the manual "check status" refetch.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	intentID := strings.TrimSpace(chi.URLParam(r, "intentID"))
	if intentID == "" {
		response.BadRequest(w, "Payment intent ID is required")
		return
	}

	result, err := h.service.Refetch(r.Context(), h.client(r), intentID)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// History handles GET /api/v1/me/payments
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	state, ok := parseState(w, r)
	if !ok {
		return
	}

	items, p, err := h.service.History(r.Context(), h.client(r), state)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.WithMeta(w, items, response.NewMeta(p.Page, p.Limit, p.Total))
}

// List handles GET /api/admin/payments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state, ok := parseState(w, r)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), h.client(r), List.Query(state))
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}

	p := state.Page
	p.Total = page.Total
	p = p.Clamp()
	response.WithMeta(w, ListResponse{
		Items:  page.Items,
		Window: listview.WindowFor(p),
		Filter: state.Filter,
	}, response.NewMeta(p.Page, p.Limit, p.Total))
}

// Stats handles GET /api/admin/payments/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	state, ok := parseState(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), h.client(r), statsQuery(state))
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// Overview handles GET /api/admin/payments/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	state, ok := parseState(w, r)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), h.client(r), state)
	if err != nil {
		errorhandler.HandleUpstream(r.Context(), w, err)
		return
	}
	response.OK(w, overview)
}

// Live handles GET /api/admin/payments/live
//
// The socket drives a server-side table: "search" is debounced, "filter",
// "tokens", "sort", "page", "limit" and "refresh" fetch at once. Every
// fetch result is pushed as a "snapshot" frame. Closing the socket cancels
// the pending search and the fetch in flight.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	c := h.client(r)
	conn, err := h.live.Upgrade(w, r, "payments")
	if err != nil {
		return
	}

	cfg := List
	cfg.Debounce = h.debounce
	ctrl := listview.NewController(conn.Context(), cfg, h.service.Fetcher(c), func(s listview.Snapshot[Payment]) {
		frame := snapshotFrame{State: s.State, Items: s.Items, Window: s.Window}
		if s.Err != nil {
			frame.Error = errorhandler.UpstreamMessage(s.Err)
		}
		conn.Send("snapshot", frame)
	})
	ctrl.Refresh()

	conn.ReadLoop(func(msg live.Message) {
		var cmd liveCommand
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &cmd); err != nil {
				conn.Send("error", map[string]string{"type": msg.Type, "message": "malformed data"})
				return
			}
		}
		if problem := applyCommand(ctrl, msg.Type, cmd); problem != "" {
			conn.Send("error", map[string]string{"type": msg.Type, "message": problem})
		}
	})
	ctrl.Close()
}

// applyCommand returns a user-facing problem when the command is rejected.
func applyCommand(ctrl *listview.Controller[Payment], kind string, cmd liveCommand) string {
	switch kind {
	case "search":
		ctrl.SetSearch(cmd.Value)
	case "filter":
		if !slices.Contains(listview.FilterKeys, cmd.Key) {
			return "unknown filter"
		}
		if cmd.Key == "location" && cmd.Value != "" {
			if err := validator.ValidateVar(cmd.Value, "location"); err != nil {
				return "unknown location"
			}
		}
		ctrl.SetFilter(cmd.Key, cmd.Value)
	case "tokens":
		if (cmd.Min != nil && *cmd.Min < 0) || (cmd.Max != nil && *cmd.Max < 0) {
			return "token range must not be negative"
		}
		if cmd.Min != nil && cmd.Max != nil && *cmd.Min > *cmd.Max {
			return "min must not exceed max"
		}
		ctrl.SetTokensRange(cmd.Min, cmd.Max)
	case "sort":
		if !List.HasSort(cmd.By) {
			return "unknown sort field"
		}
		order := listview.SortOrder(strings.ToLower(cmd.Order))
		if !order.Valid() {
			order = listview.Desc
		}
		ctrl.SetSort(cmd.By, order)
	case "page":
		ctrl.SetPage(cmd.Page)
	case "limit":
		if cmd.Limit < 1 {
			return "limit must be positive"
		}
		ctrl.SetLimit(cmd.Limit)
	case "refresh":
		ctrl.Refresh()
	default:
		return "unknown frame type"
	}
	return ""
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
