package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func marker(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Route", name)
		if id := chi.URLParam(r, "id"); id != "" {
			w.Header().Set("X-User", id)
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestMountUserRoutes(t *testing.T) {
	users := chi.NewRouter()
	users.Get("/", marker("users"))
	users.Put("/{id}", marker("users.update"))

	tokens := chi.NewRouter()
	tokens.Get("/", marker("tokens"))
	tokens.Post("/adjust", marker("tokens.adjust"))

	root := chi.NewRouter()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				t.Fatalf("registering user routes panicked: %v", rec)
			}
		}()
		mountUserRoutes(root, users, tokens)
	}()

	cases := []struct {
		method, target, route, user string
	}{
		{http.MethodGet, "/users", "users", ""},
		{http.MethodPut, "/users/u1", "users.update", "u1"},
		{http.MethodGet, "/users/u1/tokens", "tokens", "u1"},
		{http.MethodPost, "/users/u2/tokens/adjust", "tokens.adjust", "u2"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			root.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			if got := rr.Header().Get("X-Route"); got != tc.route {
				t.Fatalf("expected route %q, got %q", tc.route, got)
			}
			if got := rr.Header().Get("X-User"); got != tc.user {
				t.Fatalf("expected user %q, got %q", tc.user, got)
			}
		})
	}
}

func TestMountPaymentRoutes(t *testing.T) {
	payments := chi.NewRouter()
	payments.Get("/", marker("payments"))
	payments.Get("/stats", marker("payments.stats"))

	root := chi.NewRouter()
	mountPaymentRoutes(root, payments, marker("export"))

	t.Run("export", func(t *testing.T) {
		rr := httptest.NewRecorder()
		root.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payments/export", nil))
		if rr.Header().Get("X-Route") != "export" {
			t.Fatalf("expected export route, got status %d", rr.Code)
		}
	})

	t.Run("stats", func(t *testing.T) {
		rr := httptest.NewRecorder()
		root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payments/stats", nil))
		if rr.Header().Get("X-Route") != "payments.stats" {
			t.Fatalf("expected stats route, got status %d", rr.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payments", nil))
		if rr.Header().Get("X-Route") != "payments" {
			t.Fatalf("expected list route, got status %d", rr.Code)
		}
	})
}
