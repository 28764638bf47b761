package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getmockd/mockserve/pkg/mock"
)

// MockBuilder builds a mock definition using a fluent API.
type MockBuilder struct {
	server *MockServer
	def    *mock.Definition
	file   *fileBody
	err    error // First error encountered during building
}

type fileBody struct {
	name string
	data []byte
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (b *MockBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *MockBuilder) Err() error {
	return b.err
}

// WithStatus sets the HTTP response status code.
// Default is 200 (OK).
func (b *MockBuilder) WithStatus(status int) *MockBuilder {
	b.def.StatusCode = status
	return b
}

// WithText sets a text/plain response body.
func (b *MockBuilder) WithText(body string) *MockBuilder {
	b.file = nil
	b.def.ResponseType = mock.ResponseText
	b.def.Data = mock.TextData{Value: body}
	return b
}

// WithJSON sets the response body to the JSON encoding of body.
func (b *MockBuilder) WithJSON(body any) *MockBuilder {
	b.file = nil
	data, err := json.Marshal(body)
	if err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		data = []byte("null")
	}
	b.def.ResponseType = mock.ResponseJSON
	b.def.Data = mock.JSONData{Raw: data}
	return b
}

// WithBody picks the response type from body: strings and byte slices are
// served as text, anything else as JSON.
func (b *MockBuilder) WithBody(body any) *MockBuilder {
	switch v := body.(type) {
	case string:
		return b.WithText(v)
	case []byte:
		return b.WithText(string(v))
	default:
		return b.WithJSON(v)
	}
}

// WithFile serves data as a file download named filename. The bytes are
// uploaded when the mock is registered.
func (b *MockBuilder) WithFile(filename string, data []byte) *MockBuilder {
	b.file = &fileBody{name: filename, data: data}
	b.def.ResponseType = mock.ResponseFile
	b.def.Data = nil
	return b
}

// Build registers the mock, replacing any existing mock for the same route.
// A builder error fails the test.
func (b *MockBuilder) Build() *MockServer {
	t := b.server.t
	t.Helper()
	if b.err != nil {
		t.Fatalf("mock %s %s: %v", b.def.Method, b.def.Path, b.err)
		return b.server
	}
	if b.file != nil {
		loc, err := b.server.blobs.Ingest(context.Background(), b.file.data, b.file.name)
		if err != nil {
			t.Fatalf("mock %s %s: upload %s: %v", b.def.Method, b.def.Path, b.file.name, err)
			return b.server
		}
		b.def.Data = mock.FileData{Locator: loc}
	}
	b.server.Define(b.def)
	return b.server
}

// Reply is an alias for Build.
// More readable in fluent chains:
//
//	mock.Mock("GET", "/api").WithStatus(200).Reply()
func (b *MockBuilder) Reply() {
	b.Build()
}

// RespondWith is a shorthand for setting status and body together.
func (b *MockBuilder) RespondWith(status int, body any) *MockBuilder {
	return b.WithStatus(status).WithBody(body)
}

// RespondJSON is a shorthand for JSON response with status 200.
func (b *MockBuilder) RespondJSON(body any) *MockBuilder {
	return b.WithStatus(http.StatusOK).WithJSON(body)
}

// RespondCreated configures a 201 Created response.
func (b *MockBuilder) RespondCreated(body any) *MockBuilder {
	return b.WithStatus(http.StatusCreated).WithJSON(body)
}

// RespondNotFound configures a 404 Not Found response.
func (b *MockBuilder) RespondNotFound() *MockBuilder {
	return b.WithStatus(http.StatusNotFound).WithJSON(map[string]string{
		"error": "not_found",
	})
}

// RespondServerError configures a 500 Internal Server Error response.
func (b *MockBuilder) RespondServerError(message string) *MockBuilder {
	return b.WithStatus(http.StatusInternalServerError).WithJSON(map[string]string{
		"error": message,
	})
}
