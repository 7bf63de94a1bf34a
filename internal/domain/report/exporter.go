// Package report exports admin views as CSV files to object storage.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/domain/payment"
	"github.com/hccc/gameroom-console/internal/pkg/logger"
	"github.com/hccc/gameroom-console/internal/pkg/storage"
)

const (
	exportPageSize  = listview.MaxLimit
	defaultMaxRows  = 5000
	csvContentType  = "text/csv; charset=utf-8"
	paymentsKeyPath = "reports/payments/"
)

var ErrNothingToExport = errors.New("no payments match the filter")

// Export describes an uploaded report.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	Total     int       `json:"total"`
	Truncated bool      `json:"truncated"`
	CreatedAt time.Time `json:"createdAt"`
}

// Exporter writes payment reports to a Storage.
type Exporter struct {
	store   storage.Storage
	maxRows int
	now     func() time.Time
}

func NewExporter(store storage.Storage, maxRows int) *Exporter {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	return &Exporter{store: store, maxRows: maxRows, now: time.Now}
}

var paymentHeader = []string{
	"created_at", "order_id", "payment_intent_id", "status", "outcome",
	"amount", "currency", "tokens", "game", "location", "user_email",
	"tokens_added", "tokens_scheduled_for", "decline_code",
}

// ExportPayments pages through the payments matching state's filter and
// uploads them as one CSV. At most maxRows rows are written.
func (e *Exporter) ExportPayments(ctx context.Context, fetch listview.Fetcher[payment.Payment], state listview.State) (*Export, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(paymentHeader); err != nil {
		return nil, err
	}

	state.Page = listview.Pagination{Page: 1, Limit: exportPageSize}
	rows, total := 0, 0
	for rows < e.maxRows {
		page, err := fetch(ctx, payment.List.Query(state))
		if err != nil {
			return nil, fmt.Errorf("fetch payments page %d: %w", state.Page.Page, err)
		}
		total = page.Total
		for _, p := range page.Items {
			if rows == e.maxRows {
				break
			}
			if err := w.Write(paymentRow(p)); err != nil {
				return nil, err
			}
			rows++
		}
		if len(page.Items) < state.Page.Limit || state.Page.Offset()+len(page.Items) >= total {
			break
		}
		state.Page.Page++
	}
	if rows == 0 {
		return nil, ErrNothingToExport
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	key := paymentsKeyPath + now.Format("20060102T150405Z") + "-" + uuid.NewString() + ".csv"
	if err := e.store.Put(ctx, key, &buf, csvContentType); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	logger.FromContext(ctx).Info().
		Str("key", key).
		Int("rows", rows).
		Int("total", total).
		Msg("Payments report exported")

	return &Export{
		Key:       key,
		URL:       e.store.GetURL(key),
		Rows:      rows,
		Total:     total,
		Truncated: rows < total,
		CreatedAt: now,
	}, nil
}

func paymentRow(p payment.Payment) []string {
	email := ""
	if p.User != nil {
		email = p.User.Email
	}
	scheduled := ""
	if p.TokensScheduledFor != nil {
		scheduled = p.TokensScheduledFor.UTC().Format(time.RFC3339)
	}
	return []string{
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.OrderID,
		p.PaymentIntentID,
		string(p.Status),
		string(payment.BucketOf(p)),
		p.Amount.StringFixed(2),
		p.Currency,
		strconv.Itoa(p.TokenPackage.Tokens),
		p.Game.Name,
		p.Location,
		email,
		strconv.FormatBool(p.TokensAdded),
		scheduled,
		p.DeclineCode,
	}
}
