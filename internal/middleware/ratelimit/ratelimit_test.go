package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2, CleanupInterval: time.Hour})
	defer rl.Stop()

	want := []bool{true, true, false}
	for i, w := range want {
		if got := rl.Allow("10.0.0.1"); got != w {
			t.Errorf("request %d: Allow() = %v, want %v", i+1, got, w)
		}
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other client should not be limited")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("metrics = %+v, want 1 hit and 2 clients", m)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := []int{http.StatusNoContent, http.StatusTooManyRequests}
	for _, want := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != want {
			t.Errorf("status = %d, want %d", rec.Code, want)
		}
	}
}

func TestLimiter_WindowResets(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") {
		t.Fatal("first request rejected")
	}
	now = now.Add(30 * time.Second)
	if rl.Allow("k") {
		t.Fatal("second request inside the window allowed")
	}
	now = now.Add(31 * time.Second)
	if !rl.Allow("k") {
		t.Fatal("request after the window rejected")
	}
}

func TestLimiter_DropStale(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 5, CleanupInterval: time.Hour})
	defer rl.Stop()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("old")
	now = now.Add(11 * time.Minute)
	rl.Allow("new")

	rl.dropStale()
	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1", got)
	}
}

func TestLimiter_Headers(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Errorf("X-RateLimit-Remaining = %q, want 2", got)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Errorf("X-RateLimit-Limit = %q, want 3", got)
	}
}
