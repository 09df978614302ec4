package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_BucketsPerKey(t *testing.T) {
	byHeader := func(r *http.Request) string { return r.Header.Get("X-Acceptor") }
	rl := NewRateLimiter(0.001, 2, byHeader)
	defer rl.Shutdown()

	h := rl.Middleware(okHandler())
	send := func(acceptor string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Acceptor", acceptor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("A"))
	assert.Equal(t, http.StatusOK, send("A"))
	assert.Equal(t, http.StatusTooManyRequests, send("A"))
	assert.Equal(t, http.StatusOK, send("B"))
}

func TestRateLimiter_CleanupEvictsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Shutdown()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiterFor("idle")
	now = now.Add(10 * time.Minute)
	rl.limiterFor("fresh")
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "idle")
	assert.Contains(t, rl.limiters, "fresh")
}

func TestRateLimiter_EvictsOldestAtCapacity(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Shutdown()
	rl.maxSize = 2

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiterFor("a")
	now = now.Add(time.Second)
	rl.limiterFor("b")
	now = now.Add(time.Second)
	rl.limiterFor("c")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "a")
}

func TestRateLimiter_ShutdownIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	rl.Shutdown()
	assert.NotPanics(t, rl.Shutdown)
}
