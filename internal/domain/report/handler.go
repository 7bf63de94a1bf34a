package report

import (
	"errors"
	"net/http"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/domain/payment"
	"github.com/hccc/gameroom-console/internal/pkg/errorhandler"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/storage"
)

// PaymentsFor binds the payments list to a session.
type PaymentsFor func(sess *session.Session) listview.Fetcher[payment.Payment]

// Handler handles report exports
type Handler struct {
	exporter    *Exporter
	paymentsFor PaymentsFor
}

func NewHandler(exporter *Exporter, paymentsFor PaymentsFor) *Handler {
	return &Handler{exporter: exporter, paymentsFor: paymentsFor}
}

// ExportPayments handles POST /api/admin/payments/export. The filter is
// read from the query string, as for the payments list.
func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	state, err := payment.List.ParseQuery(r.URL.Query())
	if err != nil {
		if fields, ok := listview.IsInvalidQuery(err); ok {
			errorhandler.HandleValidation(r.Context(), w, fields)
		} else {
			response.BadRequest(w, err.Error())
		}
		return
	}

	fetch := h.paymentsFor(session.FromContext(r.Context()))
	export, err := h.exporter.ExportPayments(r.Context(), fetch, state)
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingToExport):
			response.NotFound(w, "No payments match the filter")
		case errors.Is(err, storage.ErrBucketMissing):
			response.ServiceUnavailable(w, "Export storage is not available")
		default:
			errorhandler.HandleUpstream(r.Context(), w, err)
		}
		return
	}
	response.Created(w, export)
}
