package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/domain/tokens"
)

type listCall struct {
	filter        Filter
	limit, offset int
}

type memStore struct {
	created []*Adjustment
	total   int
	calls   []listCall
	err     error
}

func (m *memStore) Create(_ context.Context, a *Adjustment) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, a)
	return nil
}

func (m *memStore) List(_ context.Context, f Filter, limit, offset int) ([]Adjustment, int, error) {
	m.calls = append(m.calls, listCall{f, limit, offset})
	if m.err != nil {
		return nil, 0, m.err
	}
	n := max(0, min(limit, m.total-offset))
	return make([]Adjustment, n), m.total, nil
}

func TestRecordAdjustment(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	confirmed := 25
	err := svc.RecordAdjustment(context.Background(), tokens.AdjustmentRecord{
		OperatorID: "op1", UserID: "u1", GameID: "g1", Location: "downtown",
		Delta: 5, Requested: 25, Confirmed: &confirmed, Outcome: tokens.OutcomeConfirmed,
		Took: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	a := store.created[0]
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, int64(1500), a.TookMS)
	assert.Equal(t, at, a.CreatedAt)
	assert.Equal(t, 25, *a.Confirmed)
	assert.Equal(t, tokens.OutcomeConfirmed, a.Outcome)
}

func TestRecordAdjustmentWrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	err := NewService(&memStore{err: boom}).RecordAdjustment(context.Background(), tokens.AdjustmentRecord{})
	assert.ErrorIs(t, err, boom)
}

func TestListClampsPastTheEnd(t *testing.T) {
	store := &memStore{total: 25}
	svc := NewService(store)

	items, p, err := svc.List(context.Background(), Filter{UserID: "u1"}, listview.Pagination{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Total)
	assert.Len(t, items, 5)
	require.Len(t, store.calls, 2)
	assert.Equal(t, 20, store.calls[1].offset)
}

func TestListDefaults(t *testing.T) {
	store := &memStore{total: 3}
	_, p, err := NewService(store).List(context.Background(), Filter{}, listview.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, listview.DefaultLimit, p.Limit)
	assert.Len(t, store.calls, 1)
}

func TestHandlerValidatesQuery(t *testing.T) {
	h := NewHandler(NewService(&memStore{}))

	for _, target := range []string{
		"/adjustments?outcome=maybe",
		"/adjustments?location=moon",
		"/adjustments?limit=500",
		"/adjustments?page=abc",
		"/adjustments?from=yesterday",
		"/adjustments?from=2026-03-02T00:00:00Z&to=2026-03-01T00:00:00Z",
	} {
		w := httptest.NewRecorder()
		h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, target)
	}
}

func TestHandlerList(t *testing.T) {
	store := &memStore{total: 12}
	h := NewHandler(NewService(store))

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/adjustments?userId=u1&outcome=failed&page=2&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Filter{UserID: "u1", Outcome: "failed"}, store.calls[0].filter)
	assert.Equal(t, 5, store.calls[0].offset)
	assert.Contains(t, w.Body.String(), `"total":12`)
}

func TestHandlerStoreFailure(t *testing.T) {
	h := NewHandler(NewService(&memStore{err: errors.New("db down")}))

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/adjustments", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
