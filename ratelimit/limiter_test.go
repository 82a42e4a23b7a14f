package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBurstThenDeny_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		burst := rapid.IntRange(1, 50).Draw(t, "burst")
		l := New(Config{RPS: 0.001, Burst: burst, CleanupInterval: time.Hour})
		defer l.Stop()

		key := rapid.StringMatching(`[a-z0-9.]{1,16}`).Draw(t, "key")
		for i := 0; i < burst; i++ {
			if !l.Allow(key) {
				t.Fatalf("request %d within burst %d was denied", i, burst)
			}
		}
		if l.Allow(key) {
			t.Fatalf("request beyond burst %d was allowed", burst)
		}
	})
}

func TestClientsAreIndependent(t *testing.T) {
	l := New(Config{RPS: 0.001, Burst: 1, CleanupInterval: time.Hour})
	defer l.Stop()

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.Len())
}

func TestCleanupDropsIdleClients(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1, CleanupInterval: time.Hour})
	defer l.Stop()

	l.Allow("idle")
	l.mu.Lock()
	l.limiters["idle"].lastUsed = time.Now().Add(-2 * time.Hour)
	l.mu.Unlock()
	l.Allow("fresh")

	l.Cleanup()
	assert.Equal(t, 1, l.Len())
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(DefaultConfig)
	l.Stop()
	l.Stop()
}

func TestMiddleware(t *testing.T) {
	l := New(Config{RPS: 0.001, Burst: 2, CleanupInterval: time.Hour})
	defer l.Stop()

	h := Middleware(l, ClientKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, call("10.0.0.1:1000").Code)
	require.Equal(t, http.StatusOK, call("10.0.0.1:2000").Code, "port does not change the client")

	rec := call("10.0.0.1:3000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"too many requests"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000").Code)
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, DefaultConfig.Enabled())
	assert.True(t, Config{RPS: 5}.Enabled())
}
