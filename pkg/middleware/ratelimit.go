package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against
type KeyFunc func(r *http.Request) string

// RemoteAddrKey buckets requests by client address
func RemoteAddrKey(r *http.Request) string {
	return r.RemoteAddr
}

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per key and evicts idle keys
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	rate     rate.Limit
	burst    int
	key      KeyFunc
	maxSize  int
	idle     time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows requestsPerSecond per key with the given burst
func NewRateLimiter(requestsPerSecond float64, burst int, key KeyFunc) *RateLimiter {
	if key == nil {
		key = RemoteAddrKey
	}
	rl := &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		key:      key,
		maxSize:  10000,
		idle:     5 * time.Minute,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idle)
	for k, l := range rl.limiters {
		if l.lastAccess.Before(cutoff) {
			delete(rl.limiters, k)
		}
	}
}

// Shutdown stops the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Shutdown() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[key]; ok {
		l.lastAccess = rl.now()
		return l.limiter
	}

	// Evict the least recently used key at capacity
	if len(rl.limiters) >= rl.maxSize {
		var oldest string
		var oldestTime time.Time
		for k, l := range rl.limiters {
			if oldest == "" || l.lastAccess.Before(oldestTime) {
				oldest, oldestTime = k, l.lastAccess
			}
		}
		delete(rl.limiters, oldest)
	}

	l := &keyLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst), lastAccess: rl.now()}
	rl.limiters[key] = l
	return l.limiter
}

// Middleware answers 429 once a key's bucket is empty
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiterFor(rl.key(r)).Allow() {
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
