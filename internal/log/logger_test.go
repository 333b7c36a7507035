package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %v, got %v (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestJSONLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentStorage, Output: &buf})
	logger.Info("hello", "k", "v")
	logger.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["component"] != ComponentStorage || rec["k"] != "v" || rec["msg"] != "hello" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestHTTPEndOmitsRawQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Output: &buf})
	r := httptest.NewRequest("GET", "/api/transactions?q=secret+rent", nil)

	NewStructuredLogger(logger).LogHTTPEnd(context.Background(), r, 404, 3, "127.0.0.1")

	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Fatalf("search text leaked into logs: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "query_len=13") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestLogErrorAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Output: &buf})
	ctx := context.WithValue(context.Background(), LoggerContextKey, logger)

	FromContext(ctx).WithComponent(ComponentAuth).Info("in context")
	NewStructuredLogger(logger).LogError(ctx, "boom", errors.New("disk full"), ComponentStorage, OpCreate, nil)

	out := buf.String()
	for _, want := range []string{"component=auth", "error=\"disk full\"", "operation=create", "component=storage"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}
