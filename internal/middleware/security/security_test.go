package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"plain api call", http.MethodGet, "/api/transactions?from=2024-01-01", "curl/8.0", false},
		{"path traversal", http.MethodGet, "/api/../etc/passwd", "", true},
		{"scanner agent", http.MethodGet, "/api/budgets", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}
	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "http://example.com"+tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.9:5000", "", "203.0.113.9"},
		{"trusted proxy", "10.1.2.3:80", "198.51.100.7, 10.1.2.3", "198.51.100.7"},
		{"untrusted proxy ignored", "203.0.113.9:5000", "198.51.100.7", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(NoStoreMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}

func TestInspectReasons(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		target string
		want   string
	}{
		{"/api/.git/config", "attack pattern in path"},
		{"/api/transactions?q=union%20select", ""},
		{"/api/transactions?file=../../secrets", "attack pattern in query"},
		{"/api/loans", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://example.com"+tt.target, nil)
		if got := d.Inspect(r); got != tt.want {
			t.Errorf("Inspect(%s) = %q, want %q", tt.target, got, tt.want)
		}
	}
	if got := d.GetMetrics().SuspiciousRequests; got != 2 {
		t.Errorf("SuspiciousRequests = %d, want 2", got)
	}
}

func TestDetectorMiddlewareRejectsTrace(t *testing.T) {
	d := NewDetector()
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("TRACE", "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.env", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("flagged GET status = %d, want pass-through 200", rec.Code)
	}
}
