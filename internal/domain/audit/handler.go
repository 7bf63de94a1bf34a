package audit

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// Handler serves the adjustment log
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/admin/audit/adjustments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, fields := parseListQuery(r.URL.Query())
	if len(fields) == 0 {
		fields = validator.Validate(q)
	}
	if len(fields) > 0 {
		errorhandler.HandleValidation(r.Context(), w, fields)
		return
	}

	items, p, err := h.service.List(r.Context(), q.filter(), listview.Pagination{Page: q.Page, Limit: q.Limit})
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load the adjustment log", err)
		return
	}
	response.WithMeta(w, ListResponse{
		Items:  items,
		Window: listview.WindowFor(p),
	}, response.NewMeta(p.Page, p.Limit, p.Total))
}

func parseListQuery(values url.Values) (listQuery, map[string]string) {
	fields := map[string]string{}
	q := listQuery{
		OperatorID: values.Get("operatorId"),
		UserID:     values.Get("userId"),
		GameID:     values.Get("gameId"),
		Location:   values.Get("location"),
		Outcome:    values.Get("outcome"),
	}

	for key, dst := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[key] = "Must be a whole number"
			continue
		}
		*dst = n
	}
	for key, dst := range map[string]**time.Time{"from": &q.From, "to": &q.To} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields[key] = "Must be an RFC 3339 timestamp"
			continue
		}
		*dst = &t
	}
	if q.From != nil && q.To != nil && !q.To.After(*q.From) {
		fields["to"] = "Must be after from"
	}
	return q, fields
}
