package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hccc/gameroom-console/internal/pkg/response"
)

const gamesJSON = `{"success":true,"data":[{"id":"g1","name":"Pinball"}]}`

// newCachedRouter mirrors the production order: Compress on the root
// router, Cache on the public group below it.
func newCachedRouter(t *testing.T) (http.Handler, *redis.Client, *int32) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var calls int32
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimw.Compress(5))
	r.Group(func(r chi.Router) {
		r.Use(Cache(CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:cache"}, rdb))
		r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			response.OK(w, []map[string]string{{"id": "g1", "name": "Pinball"}})
		})
	})
	return r, rdb, &calls
}

func get(h http.Handler, acceptEncoding string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func gunzip(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(body)
}

func TestCacheBehindCompressServesDecodableHits(t *testing.T) {
	h, _, calls := newCachedRouter(t)

	miss := get(h, "gzip")
	require.Equal(t, http.StatusOK, miss.Code)
	assert.Equal(t, "MISS", miss.Header().Get("X-Cache"))
	assert.Equal(t, "gzip", miss.Header().Get("Content-Encoding"))
	assert.JSONEq(t, gamesJSON, gunzip(t, miss))

	hit := get(h, "gzip")
	require.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, "gzip", hit.Header().Get("Content-Encoding"))
	assert.JSONEq(t, gamesJSON, gunzip(t, hit))

	plain := get(h, "")
	require.Equal(t, http.StatusOK, plain.Code)
	assert.Equal(t, "HIT", plain.Header().Get("X-Cache"))
	assert.Empty(t, plain.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/json", plain.Header().Get("Content-Type"))
	assert.JSONEq(t, gamesJSON, plain.Body.String())

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCacheStoresIdentityHeadersOnly(t *testing.T) {
	h, rdb, _ := newCachedRouter(t)
	get(h, "gzip")

	keys, err := rdb.Keys(context.Background(), "test:cache:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)

	raw, err := rdb.Get(context.Background(), keys[0]).Bytes()
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(raw)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, gamesJSON, string(body))
	for _, k := range transportHeaders {
		assert.Empty(t, hdr.Get(k), k)
	}
}

func TestInvalidateCacheDropsEntries(t *testing.T) {
	h, rdb, calls := newCachedRouter(t)
	get(h, "")
	require.NoError(t, InvalidateCache(context.Background(), rdb, "test:cache"))

	again := get(h, "")
	assert.Equal(t, "MISS", again.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}
