package hccc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	opts.BaseURL = server.URL
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	return NewClient(opts)
}

func TestAdjustTokensSendsBearerAndDelta(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/u1/tokens/adjust" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid route"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer operator-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid auth"}`))
			return
		}
		if r.Header.Get("User-Agent") != "HCCC-Console/test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var in AdjustTokens
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Delta != 5 || in.GameID != "g1" || in.Location != "downtown" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"bad body"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"userId":"u1","gameId":"g1","location":"downtown","tokens":25,"pendingTokens":5}}`))
	}, Options{UserAgent: "HCCC-Console/test"})

	balance, err := client.WithToken("operator-token").AdjustTokens(context.Background(), "u1", AdjustTokens{GameID: "g1", Location: "downtown", Delta: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if balance.Tokens != 25 || balance.PendingTokens != 5 {
		t.Fatalf("unexpected balance %+v", balance)
	}
}

func TestNonSuccessStatusUsesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Game not found"}`))
	}, Options{})

	_, err := client.GetGame(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Game not found" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Fatal("expected IsNotFound")
	}
}

func TestAuthenticatedCallWithoutTokenFailsFast(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, Options{})

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatal("expected no upstream request")
	}
}

func TestListDecodesPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "succeeded" || r.URL.Query().Get("page") != "2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[{"_id":"p1","status":"succeeded","amount":"12.50"}],"pagination":{"page":2,"limit":10,"total":11,"pages":2}}}`))
	}, Options{})

	page, err := client.WithToken("t").ListPayments(context.Background(), url.Values{"status": {"succeeded"}, "page": {"2"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Items) != 1 || page.Pagination.Total != 11 || page.Pagination.Pages != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Amount.String() != "12.5" {
		t.Fatalf("unexpected amount %s", page.Items[0].Amount)
	}
}

func TestGetRetriesOnServiceUnavailable(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"g1","name":"Pinball"}}`))
	}, Options{Retries: 2})

	game, err := client.GetGame(context.Background(), "g1")
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if game.Name != "Pinball" {
		t.Fatalf("unexpected game %+v", game)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestWritesAreNotRetried(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Options{Retries: 3})

	_, err := client.WithToken("t").AdjustTokens(context.Background(), "u1", AdjustTokens{GameID: "g", Location: "l", Delta: 1})
	if StatusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 error, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestTimeoutClassified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, Options{Timeout: 20 * time.Millisecond})

	_, err := client.WithToken("t").ConfirmPayment(context.Background(), "pi_1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || !transportErr.Timeout() {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestPlainTextErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}, Options{})

	_, err := client.WithToken("t").CreateGame(context.Background(), GameInput{Name: "x"})
	if err == nil || !strings.Contains(MessageOf(err), "bad request") {
		t.Fatalf("expected body in message, got %v", err)
	}
}

func TestCoalescedGetSurvivesFirstCallerCancel(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[{"_id":"p1","status":"succeeded"}],"pagination":{"total":1,"page":1,"limit":10,"pages":1}}}`))
	}, Options{})
	api := client.WithToken("admin-token")
	query := url.Values{"page": {"1"}}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := api.ListPayments(firstCtx, query)
		firstErr <- err
	}()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&hits) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	type result struct {
		page *Page[Payment]
		err  error
	}
	second := make(chan result, 1)
	go func() {
		page, err := api.ListPayments(context.Background(), query)
		second <- result{page, err}
	}()
	time.Sleep(30 * time.Millisecond)
	cancelFirst()

	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to see context.Canceled, got %v", err)
	}
	got := <-second
	if got.err != nil {
		t.Fatalf("expected the second caller to get the shared page, got %v", got.err)
	}
	if len(got.page.Items) != 1 || got.page.Items[0].ID != "p1" {
		t.Fatalf("unexpected page %+v", got.page)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected one upstream request, got %d", n)
	}
}
