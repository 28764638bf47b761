package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Loki defaults.
const (
	DefaultLokiBatchSize     = 100
	DefaultLokiFlushInterval = 5 * time.Second
	lokiPushTimeout          = 5 * time.Second
)

// LokiHandler is a slog.Handler that ships records to a Loki push endpoint
// in batches. Handlers derived with WithAttrs or WithGroup share the parent's
// batch, so Close on the root handler flushes everything.
type LokiHandler struct {
	sink   *lokiSink
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

type lokiSink struct {
	url       string
	labels    map[string]string
	client    *http.Client
	batchSize int
	interval  time.Duration

	mu      sync.Mutex
	batch   [][2]string
	timer   *time.Timer
	closed  bool
	flushMu sync.Mutex
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// LokiOption configures a LokiHandler.
type LokiOption func(*LokiHandler)

// WithLokiLabels adds stream labels.
func WithLokiLabels(labels map[string]string) LokiOption {
	return func(h *LokiHandler) {
		for k, v := range labels {
			h.sink.labels[k] = v
		}
	}
}

// WithLokiLevel sets the minimum level shipped to Loki.
func WithLokiLevel(level slog.Leveler) LokiOption {
	return func(h *LokiHandler) {
		h.level = level
	}
}

// WithLokiBatchSize flushes once this many records are buffered.
func WithLokiBatchSize(size int) LokiOption {
	return func(h *LokiHandler) {
		if size > 0 {
			h.sink.batchSize = size
		}
	}
}

// WithLokiFlushInterval sets how often a partial batch is pushed.
func WithLokiFlushInterval(d time.Duration) LokiOption {
	return func(h *LokiHandler) {
		if d > 0 {
			h.sink.interval = d
		}
	}
}

// WithLokiClient overrides the HTTP client used for pushes.
func WithLokiClient(c *http.Client) LokiOption {
	return func(h *LokiHandler) {
		if c != nil {
			h.sink.client = c
		}
	}
}

// NewLokiHandler creates a handler pushing to url, which should be the full
// push endpoint (http://loki:3100/loki/api/v1/push).
func NewLokiHandler(url string, opts ...LokiOption) *LokiHandler {
	h := &LokiHandler{
		sink: &lokiSink{
			url:       url,
			labels:    map[string]string{"job": "mockserve"},
			client:    &http.Client{Timeout: lokiPushTimeout},
			batchSize: DefaultLokiBatchSize,
			interval:  DefaultLokiFlushInterval,
		},
		level: LevelInfo,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sink.timer = time.AfterFunc(h.sink.interval, h.sink.tick)
	return h
}

// Enabled implements slog.Handler.
func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler. Records are buffered; delivery errors
// surface from Flush and Close only.
func (h *LokiHandler) Handle(_ context.Context, r slog.Record) error {
	line, err := h.format(r)
	if err != nil {
		return err
	}
	if h.sink.add(r.Time, line) {
		go func() { _ = h.sink.flush(context.Background()) }()
	}
	return nil
}

func (h *LokiHandler) format(r slog.Record) (string, error) {
	fields := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	target := fields
	for _, g := range h.groups {
		sub := map[string]any{}
		target[g] = sub
		target = sub
	}
	for _, a := range h.attrs {
		putAttr(target, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(target, a)
		return true
	})
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode loki line: %w", err)
	}
	return string(b), nil
}

func putAttr(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return
		}
		target := dst
		if a.Key != "" {
			sub := map[string]any{}
			dst[a.Key] = sub
			target = sub
		}
		for _, ga := range group {
			putAttr(target, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	if err, ok := v.Any().(error); ok {
		dst[a.Key] = err.Error()
		return
	}
	dst[a.Key] = v.Any()
}

// WithAttrs implements slog.Handler.
func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &c
}

// WithGroup implements slog.Handler.
func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &c
}

// Flush pushes all buffered records.
func (h *LokiHandler) Flush(ctx context.Context) error {
	return h.sink.flush(ctx)
}

// Close stops the flush timer and pushes what is left. Records handled after
// Close are discarded.
func (h *LokiHandler) Close(ctx context.Context) error {
	h.sink.mu.Lock()
	h.sink.closed = true
	h.sink.timer.Stop()
	h.sink.mu.Unlock()
	return h.sink.flush(ctx)
}

// add buffers a line and reports whether the batch is full.
func (s *lokiSink) add(ts time.Time, line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.batch = append(s.batch, [2]string{strconv.FormatInt(ts.UnixNano(), 10), line})
	return len(s.batch) >= s.batchSize
}

func (s *lokiSink) tick() {
	_ = s.flush(context.Background())
	s.mu.Lock()
	if !s.closed {
		s.timer.Reset(s.interval)
	}
	s.mu.Unlock()
}

func (s *lokiSink) flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	batch := s.batch
	s.batch = nil
	s.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	body, err := json.Marshal(lokiPush{Streams: []lokiStream{{Stream: s.labels, Values: batch}}})
	if err != nil {
		return fmt.Errorf("encode loki push: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build loki request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to loki: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loki returned status %d", resp.StatusCode)
	}
	return nil
}
