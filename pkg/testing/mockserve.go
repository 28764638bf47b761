package testing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/engine"
	"github.com/getmockd/mockserve/pkg/mock"
	"github.com/getmockd/mockserve/pkg/requestlog"
)

// maxRecordedRequests bounds the request history kept for assertions.
const maxRecordedRequests = 10000

// MockServer is a test helper for running mockserve in tests.
// It provides a fluent API for configuring mock endpoints and assertions.
type MockServer struct {
	t        testing.TB
	store    *storage.InMemoryMockStore
	requests *requestlog.MemoryStore
	blobs    *blob.Storage
	handler  http.Handler

	mu      sync.Mutex
	httpSrv *httptest.Server
}

// New creates a new mock server for testing. Uploaded files are kept in a
// temporary directory. The server is stopped when the test completes.
func New(t testing.TB) *MockServer {
	t.Helper()
	m := &MockServer{
		t:        t,
		store:    storage.NewInMemoryMockStore(),
		requests: requestlog.NewMemoryStore(maxRecordedRequests),
		blobs:    blob.New(blob.NewLocalBackend(t.TempDir())),
	}
	m.handler = engine.NewHandler(engine.Deps{
		Store:    m.store,
		Blobs:    m.blobs,
		Recorder: syncRecorder{m.requests},
	})
	t.Cleanup(m.Stop)
	return m
}

// syncRecorder writes entries before the response is sent, so assertions
// never race the server.
type syncRecorder struct {
	sink *requestlog.MemoryStore
}

func (r syncRecorder) Record(e *requestlog.Entry) {
	_ = r.sink.Write(context.Background(), e)
}

// Start starts the mock server and returns the base URL. Mocks can be added
// before or after Start.
func (m *MockServer) Start() string {
	m.t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.httpSrv == nil {
		m.httpSrv = httptest.NewServer(m.handler)
	}
	return m.httpSrv.URL
}

// Stop stops the mock server. It is safe to call more than once.
func (m *MockServer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.httpSrv != nil {
		m.httpSrv.Close()
		m.httpSrv = nil
	}
}

// URL returns the base URL of the mock server.
// Returns empty string if the server is not started.
func (m *MockServer) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.httpSrv == nil {
		return ""
	}
	return m.httpSrv.URL
}

// Handler returns the server's HTTP handler for in-process tests that do not
// need a listener.
func (m *MockServer) Handler() http.Handler {
	return m.handler
}

// Mock starts a definition for method and path. Nothing is registered until
// Reply or Build.
//
// Example:
//
//	mock.Mock("GET", "/users/123").
//	    WithStatus(200).
//	    WithJSON(map[string]string{"id": "123"}).
//	    Reply()
func (m *MockServer) Mock(method, path string) *MockBuilder {
	return &MockBuilder{
		server: m,
		def: &mock.Definition{
			Method:       method,
			Path:         path,
			StatusCode:   http.StatusOK,
			ResponseType: mock.ResponseText,
			Data:         mock.TextData{},
		},
	}
}

// Define registers a complete definition, replacing any existing one for the
// same route key.
func (m *MockServer) Define(def *mock.Definition) {
	m.t.Helper()
	if err := m.store.Define(context.Background(), def); err != nil {
		m.t.Fatalf("define %s %s: %v", def.Method, def.Path, err)
	}
}

// Lookup returns the stored definition for method and path, or nil.
func (m *MockServer) Lookup(method, path string) *mock.Definition {
	def, err := m.store.Lookup(context.Background(), mock.NormalizeKey(method, path))
	if err != nil {
		return nil
	}
	return def
}

// Reset clears all mocks and request logs.
// Use this between test cases to start fresh.
func (m *MockServer) Reset() {
	m.store.Reset()
	m.requests.Clear()
}

// Requests returns all logged requests for assertions.
// Requests are returned in reverse chronological order (newest first).
func (m *MockServer) Requests() []RequestLog {
	entries := m.requests.List(nil)
	result := make([]RequestLog, len(entries))
	for i, e := range entries {
		result[i] = RequestLog{
			Method: e.Method,
			Path:   e.Path,
			Body:   string(e.Body),
		}
	}
	return result
}

// AssertCalled asserts that an endpoint was called at least once.
func (m *MockServer) AssertCalled(t testing.TB, method, path string) {
	t.Helper()
	if m.countCalls(method, path) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (m *MockServer) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()
	if count := m.countCalls(method, path); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (m *MockServer) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()
	if count := m.countCalls(method, path); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

func (m *MockServer) countCalls(method, path string) int {
	want := mock.NormalizeKey(method, path)
	count := 0
	for _, e := range m.requests.List(&requestlog.Filter{Method: want.Method}) {
		if matchesPath(mock.NormalizeKey(e.Method, e.Path).Path, want.Path) {
			count++
		}
	}
	return count
}

// matchesPath checks if a request path matches the expected path pattern.
// A {name} segment in expected matches any single segment.
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}
	for i, exp := range expectedParts {
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}

// Client returns an http.Client configured to work with the mock server.
func (m *MockServer) Client() *http.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.httpSrv != nil {
		return m.httpSrv.Client()
	}
	return http.DefaultClient
}
