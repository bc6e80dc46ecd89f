package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_LEVEL", "debug")
	l := Setup()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level must be enabled")
	}

	t.Setenv("LOG_LEVEL", "error")
	l = Setup()
	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info must be disabled at error level")
	}

	t.Setenv("LOG_LEVEL", "")
	l = Setup()
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug must be disabled by default")
	}
	if !l.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info must be enabled by default")
	}
}

func TestLFallsBackToSetup(t *testing.T) {
	defaultLogger = nil
	if L() == nil {
		t.Fatal("L must initialize on demand")
	}
}

func TestAccessMiddlewarePassesThrough(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("teapot"))
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
	if w.Code != http.StatusTeapot || w.Body.String() != "teapot" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}
