package report

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/domain/payment"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/storage"
)

// pagedPayments serves total payments in pages and records the queries.
func pagedPayments(total int, queries *[]url.Values) listview.Fetcher[payment.Payment] {
	return func(_ context.Context, q url.Values) (listview.PageResult[payment.Payment], error) {
		*queries = append(*queries, q)
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		start := (page - 1) * limit
		end := min(start+limit, total)
		items := []payment.Payment{}
		for i := start; i < end; i++ {
			items = append(items, payment.Payment{
				OrderID:      "ord-" + strconv.Itoa(i),
				Status:       payment.StatusSucceeded,
				Amount:       decimal.RequireFromString("10.5"),
				TokenPackage: payment.TokenPackage{Tokens: 50},
				Location:     "mall",
				User:         &payment.UserRef{Email: "a@example.com"},
			})
		}
		return listview.PageResult[payment.Payment]{Items: items, Total: total}, nil
	}
}

func newExporter(t *testing.T, maxRows int) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "https://files.example.com")
	require.NoError(t, err)
	e := NewExporter(store, maxRows)
	e.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return e, dir
}

func readCSV(t *testing.T, dir, key string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportPagesThroughEverything(t *testing.T) {
	e, dir := newExporter(t, 1000)
	var queries []url.Values

	state := payment.List.NewState()
	state.SetFilter("status", "succeeded")
	out, err := e.ExportPayments(context.Background(), pagedPayments(230, &queries), state)
	require.NoError(t, err)

	assert.Len(t, queries, 3)
	for _, q := range queries {
		assert.Equal(t, "succeeded", q.Get("status"))
		assert.Equal(t, "100", q.Get("limit"))
	}
	assert.Equal(t, 230, out.Rows)
	assert.False(t, out.Truncated)
	assert.True(t, strings.HasPrefix(out.Key, "reports/payments/20260314T093000Z-"))
	assert.True(t, strings.HasSuffix(out.Key, ".csv"))
	assert.Equal(t, "https://files.example.com/"+out.Key, out.URL)

	records := readCSV(t, dir, out.Key)
	require.Len(t, records, 231)
	assert.Equal(t, paymentHeader, records[0])
	assert.Equal(t, "ord-0", records[1][1])
	assert.Equal(t, "success", records[1][4])
	assert.Equal(t, "10.50", records[1][5])
	assert.Equal(t, "a@example.com", records[1][10])
}

func TestExportStopsAtMaxRows(t *testing.T) {
	e, dir := newExporter(t, 150)
	var queries []url.Values

	out, err := e.ExportPayments(context.Background(), pagedPayments(1000, &queries), payment.List.NewState())
	require.NoError(t, err)
	assert.Len(t, queries, 2)
	assert.Equal(t, 150, out.Rows)
	assert.Equal(t, 1000, out.Total)
	assert.True(t, out.Truncated)
	assert.Len(t, readCSV(t, dir, out.Key), 151)
}

func TestExportNothing(t *testing.T) {
	e, _ := newExporter(t, 10)
	var queries []url.Values
	_, err := e.ExportPayments(context.Background(), pagedPayments(0, &queries), payment.List.NewState())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportFetchFailure(t *testing.T) {
	e, _ := newExporter(t, 10)
	boom := errors.New("boom")
	fetch := func(context.Context, url.Values) (listview.PageResult[payment.Payment], error) {
		return listview.PageResult[payment.Payment]{}, boom
	}
	_, err := e.ExportPayments(context.Background(), fetch, payment.List.NewState())
	assert.ErrorIs(t, err, boom)
}

func TestExportHandler(t *testing.T) {
	e, _ := newExporter(t, 10)
	var queries []url.Values
	h := NewHandler(e, func(*session.Session) listview.Fetcher[payment.Payment] {
		return pagedPayments(3, &queries)
	})

	w := httptest.NewRecorder()
	h.ExportPayments(w, httptest.NewRequest(http.MethodPost, "/api/admin/payments/export?location=mall", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "mall", queries[0].Get("location"))
	assert.Contains(t, w.Body.String(), `"rows":3`)

	w = httptest.NewRecorder()
	h.ExportPayments(w, httptest.NewRequest(http.MethodPost, "/api/admin/payments/export?location=moon", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
