package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type lokiRecorder struct {
	mu     sync.Mutex
	pushes []lokiPush
	status int
}

func (l *lokiRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var p lokiPush
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	l.mu.Lock()
	l.pushes = append(l.pushes, p)
	status := l.status
	l.mu.Unlock()
	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func (l *lokiRecorder) lines() []map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []map[string]any
	for _, p := range l.pushes {
		for _, s := range p.Streams {
			for _, v := range s.Values {
				var m map[string]any
				_ = json.Unmarshal([]byte(v[1]), &m)
				out = append(out, m)
			}
		}
	}
	return out
}

func TestLokiHandler_CloseFlushesDerivedHandlers(t *testing.T) {
	rec := &lokiRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	h := NewLokiHandler(srv.URL, WithLokiLabels(map[string]string{"service": "mockserve"}), WithLokiFlushInterval(time.Hour))
	logger := slog.New(h).With("component", "engine")
	logger.Info("mock defined", "method", "GET")
	logger.WithGroup("req").Warn("slow", "ms", 120)
	logger.Debug("below level")

	if err := h.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := rec.lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0]["msg"] != "mock defined" || lines[0]["component"] != "engine" || lines[0]["method"] != "GET" {
		t.Errorf("unexpected first line: %v", lines[0])
	}
	req, ok := lines[1]["req"].(map[string]any)
	if !ok || req["ms"] != float64(120) {
		t.Errorf("group attrs not nested: %v", lines[1])
	}
	if rec.pushes[0].Streams[0].Stream["job"] != "mockserve" || rec.pushes[0].Streams[0].Stream["service"] != "mockserve" {
		t.Errorf("labels = %v", rec.pushes[0].Streams[0].Stream)
	}
}

func TestLokiHandler_FlushOnBatchSize(t *testing.T) {
	rec := &lokiRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	h := NewLokiHandler(srv.URL, WithLokiBatchSize(2), WithLokiFlushInterval(time.Hour))
	defer func() { _ = h.Close(context.Background()) }()
	logger := slog.New(h)
	logger.Info("one")
	logger.Info("two")

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.lines()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("batch was not pushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLokiHandler_PushError(t *testing.T) {
	rec := &lokiRecorder{status: http.StatusInternalServerError}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	h := NewLokiHandler(srv.URL, WithLokiFlushInterval(time.Hour))
	slog.New(h).Error("boom", "err", errors.New("disk full"))

	err := h.Close(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("Close error = %v, want status 500", err)
	}
	if got := rec.lines()[0]["err"]; got != "disk full" {
		t.Errorf("err attr = %v, want message string", got)
	}
}

func TestTee(t *testing.T) {
	var a, b bytes.Buffer
	base := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &a})
	second := slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: LevelWarn})

	logger := Tee(base, second).With("component", "cli")
	logger.Info("info only")
	logger.Warn("both")

	if !strings.Contains(a.String(), "info only") || !strings.Contains(a.String(), "both") {
		t.Errorf("base output = %q", a.String())
	}
	if strings.Contains(b.String(), "info only") || !strings.Contains(b.String(), `"component":"cli"`) {
		t.Errorf("second output = %q", b.String())
	}
	if Tee(base) != base {
		t.Error("Tee without extra handlers should return base")
	}
}
