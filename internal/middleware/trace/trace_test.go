package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "finance/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Format: "text", Output: &buf})
	m := NewMiddleware(func(*http.Request) string { return "203.0.113.1" }, applog.NewStructuredLogger(logger))

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?q=secret", nil))

	if !strings.HasPrefix(seen, "req_") || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	if !strings.Contains(out, "status_code=404") || !strings.Contains(out, "client_ip=203.0.113.1") {
		t.Errorf("unexpected log line %q", out)
	}
	if strings.Contains(out, "secret") {
		t.Errorf("raw query must not be logged: %q", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("unexpected metrics %+v", m.GetMetrics())
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "abc-123" {
		t.Fatalf("expected incoming id, got %q", seen)
	}

	r.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	h.ServeHTTP(httptest.NewRecorder(), r)
	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("oversized id should be replaced, got %q", seen)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}
