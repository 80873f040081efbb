// Package ratelimit throttles API callers with a fixed one-minute window per
// client key.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window   = time.Minute
	staleAge = 10 * time.Minute
)

// Limiter counts requests per client key inside the current window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	now     func() time.Time

	limit           int
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once

	rejected atomic.Int64
}

type bucket struct {
	start time.Time
	count int
	seen  time.Time
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts a limiter and its stale-entry sweeper. Call Stop to end
// the sweeper.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &Limiter{
		clients:         make(map[string]*bucket),
		now:             time.Now,
		limit:           config.RequestsPerMinute,
		cleanupInterval: config.CleanupInterval,
		stop:            make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow records one request for key and reports whether it fits the window.
func (rl *Limiter) Allow(key string) bool {
	ok, _, _ := rl.take(key)
	return ok
}

// take returns the decision, the requests left and when the window resets.
func (rl *Limiter) take(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[key]
	if !ok || now.Sub(b.start) >= window {
		b = &bucket{start: now}
		rl.clients[key] = b
	}
	b.seen = now
	reset := b.start.Add(window)

	if b.count >= rl.limit {
		rl.rejected.Add(1)
		return false, 0, reset
	}
	b.count++
	return true, rl.limit - b.count, reset
}

func (rl *Limiter) sweep() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStale()
		case <-rl.stop:
			return
		}
	}
}

func (rl *Limiter) dropStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-staleAge)
	for key, b := range rl.clients {
		if b.seen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the sweeper. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Metrics is a snapshot of the limiter. TotalHits counts rejected requests.
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   rl.rejected.Load(),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Middleware limits by the key extractKey returns and sets the
// X-RateLimit-* headers. onLimit writes the rejection; nil falls back to a
// plain 429.
func (rl *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, left, reset := rl.take(extractKey(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !ok {
				retry := int(time.Until(reset).Seconds()) + 1
				h.Set("Retry-After", strconv.Itoa(retry))
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
