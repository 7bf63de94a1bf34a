package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/session"
)

type fakeClient struct {
	mu       sync.Mutex
	intents  []hccc.PaymentIntentRequest
	queries  []url.Values
	payment  hccc.Payment
	payments []hccc.Payment
	stats    hccc.PaymentStats
	err      error
}

func (f *fakeClient) CreatePaymentIntent(_ context.Context, in hccc.PaymentIntentRequest) (*hccc.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents = append(f.intents, in)
	return &hccc.PaymentIntent{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1", Status: "created"}, nil
}

func (f *fakeClient) ConfirmPayment(_ context.Context, intentID string) (*hccc.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.payment
	p.PaymentIntentID = intentID
	return &p, nil
}

func (f *fakeClient) MyPayments(_ context.Context, query url.Values) (*hccc.Page[hccc.Payment], error) {
	return f.page(query)
}

func (f *fakeClient) ListPayments(_ context.Context, query url.Values) (*hccc.Page[hccc.Payment], error) {
	return f.page(query)
}

func (f *fakeClient) page(query url.Values) (*hccc.Page[hccc.Payment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return &hccc.Page[hccc.Payment]{
		Items:      f.payments,
		Pagination: hccc.Pagination{Page: 1, Limit: 20, Total: len(f.payments), Pages: 1},
	}, nil
}

func (f *fakeClient) PaymentStats(context.Context, url.Values) (*hccc.PaymentStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.stats
	return &s, nil
}

func newRouter(c *fakeClient) http.Handler {
	h := NewHandler(NewService(fastPoller(3)), func(*session.Session) Client { return c }, nil, 0)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &session.Session{Token: "tok", UserID: "u1", Role: session.RoleAdmin}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	})
	r.Mount("/checkout", h.CheckoutRoutes())
	r.Mount("/admin/payments", h.AdminRoutes())
	r.Get("/me/payments", h.History)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, json.RawMessage) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env.Data
}

func TestCheckoutValidation(t *testing.T) {
	c := &fakeClient{}
	router := newRouter(c)

	for _, body := range []string{
		`{"location":"downtown","tokens":50,"price":"10.00"}`,
		`{"gameId":"g1","location":"moon","tokens":50,"price":"10.00"}`,
		`{"gameId":"g1","location":"downtown","tokens":0,"price":"10.00"}`,
		`{"gameId":"g1","location":"downtown","tokens":50,"price":"0"}`,
	} {
		w, _ := do(t, router, http.MethodPost, "/checkout", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: expected 422, got %d", body, w.Code)
		}
	}
	if len(c.intents) != 0 {
		t.Fatalf("invalid checkouts must not reach the API, got %d", len(c.intents))
	}
}

func TestCheckoutCreatesIntent(t *testing.T) {
	c := &fakeClient{}
	router := newRouter(c)

	w, data := do(t, router, http.MethodPost, "/checkout", `{"gameId":"g1","location":"mall","tokens":50,"price":"12.50"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil || intent.ClientSecret != "pi_1_secret" {
		t.Fatalf("unexpected intent %s", data)
	}
	if len(c.intents) != 1 || !c.intents[0].TokenPackage.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected upstream request %+v", c.intents)
	}
}

func TestStatusInterpretsDecline(t *testing.T) {
	c := &fakeClient{payment: hccc.Payment{ID: "p1", Status: "requires_payment_method", DeclineCode: "insufficient_funds"}}
	router := newRouter(c)

	w, data := do(t, router, http.MethodGet, "/checkout/pi_9/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("invalid result: %v", err)
	}
	if res.Payment.PaymentIntentID != "pi_9" {
		t.Fatalf("expected refetch by intent id, got %q", res.Payment.PaymentIntentID)
	}
	if res.Outcome.Message != "Your card has insufficient funds. Please try a different card." {
		t.Fatalf("unexpected message %q", res.Outcome.Message)
	}
}

func TestStatusUpstreamFailure(t *testing.T) {
	c := &fakeClient{err: &hccc.APIError{Status: http.StatusNotFound, Message: "Payment not found"}}
	router := newRouter(c)

	w, _ := do(t, router, http.MethodGet, "/checkout/pi_9/status", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAdminListForwardsQuery(t *testing.T) {
	c := &fakeClient{payments: []hccc.Payment{{ID: "p1", Status: "succeeded"}, {ID: "p2", Status: "failed"}}}
	router := newRouter(c)

	w, _ := do(t, router, http.MethodGet, "/admin/payments?status=failed&search=%20john%20&sortBy=amount&sortOrder=asc&limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	q := c.queries[0]
	for key, want := range map[string]string{"status": "failed", "search": "john", "sortBy": "amount", "sortOrder": "asc", "limit": "2", "page": "1"} {
		if got := q.Get(key); got != want {
			t.Fatalf("query %s: expected %q, got %q", key, want, got)
		}
	}
}

func TestAdminListRejectsBadQuery(t *testing.T) {
	router := newRouter(&fakeClient{})

	w, _ := do(t, router, http.MethodGet, "/admin/payments?limit=500", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestOverviewCombinesStatsAndFirstPage(t *testing.T) {
	c := &fakeClient{
		payments: []hccc.Payment{{ID: "p1", Status: "succeeded"}},
		stats:    hccc.PaymentStats{TotalRevenue: decimal.RequireFromString("100"), SucceededPayments: 8, TotalPayments: 10},
	}
	router := newRouter(c)

	w, data := do(t, router, http.MethodGet, "/admin/payments/overview", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var ov Overview
	if err := json.Unmarshal(data, &ov); err != nil {
		t.Fatalf("invalid overview: %v", err)
	}
	if len(ov.Items) != 1 || ov.Page.Total != 1 {
		t.Fatalf("unexpected page %+v", ov)
	}
	if !ov.Stats.AverageOrder.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected average %s", ov.Stats.AverageOrder)
	}
}

func TestOverviewFailsWhenEitherCallFails(t *testing.T) {
	c := &fakeClient{err: &hccc.TransportError{Kind: "network"}}
	router := newRouter(c)

	w, _ := do(t, router, http.MethodGet, "/admin/payments/overview", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestHistoryInterpretsEachPayment(t *testing.T) {
	c := &fakeClient{payments: []hccc.Payment{{ID: "p1", Status: "processing"}}}
	router := newRouter(c)

	w, data := do(t, router, http.MethodGet, "/me/payments", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []Result
	if err := json.Unmarshal(data, &items); err != nil || len(items) != 1 {
		t.Fatalf("unexpected items %s", data)
	}
	if items[0].Outcome.Bucket != BucketPending || !items[0].Outcome.OfferRefetch {
		t.Fatalf("unexpected outcome %+v", items[0].Outcome)
	}
}

func TestConfirmWaitPolls(t *testing.T) {
	c := &fakeClient{payment: hccc.Payment{Status: "processing"}}
	router := newRouter(c)

	w, data := do(t, router, http.MethodPost, "/checkout/confirm", `{"paymentIntentId":"pi_1","wait":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Outcome.Bucket != BucketPending {
		t.Fatalf("expected a still-pending outcome, got %s", data)
	}
}
