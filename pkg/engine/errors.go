// Error types and client-safe messages for the mock API.

package engine

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/httputil"
)

// Safe error messages for client responses.
const (
	// ErrMsgInternalError is returned for unexpected internal errors.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgInvalidJSON is returned for JSON parsing errors.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgInvalidMultipart is returned when a multipart body cannot be read.
	ErrMsgInvalidMultipart = "Invalid multipart request body"

	// ErrMsgUnsupportedContentType is returned for bodies that are neither
	// JSON nor multipart.
	ErrMsgUnsupportedContentType = "Content-Type must be application/json or multipart/form-data"

	// ErrMsgMockNotFound is returned when a patch targets a missing mock.
	ErrMsgMockNotFound = "No mock is defined for this method and path"

	// ErrMsgFileNotFound is returned when a file mock's content is missing.
	ErrMsgFileNotFound = "File not found"

	// ErrMsgFileReadFailed is returned when a file mock's content cannot be read.
	ErrMsgFileReadFailed = "Failed to read file"

	// ErrMsgUploadTooLarge is returned when an upload exceeds the size limit.
	ErrMsgUploadTooLarge = "Uploaded file exceeds the size limit"
)

// ValidationError reports a malformed define or patch request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// StatusCode returns the HTTP status for the error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// errUnsupportedMedia is returned for content types ingest cannot read.
var errUnsupportedMedia = errors.New("unsupported content type")

// errTooLarge is returned when a body exceeds its size limit.
var errTooLarge = errors.New("request body too large")

// writeRequestError maps an ingest or store error to a response. Client
// mistakes are reported as-is; anything else is logged and sanitized.
func writeRequestError(w http.ResponseWriter, log *slog.Logger, operation string, err error) {
	var verr *ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		httputil.WriteBadRequest(w, verr.Error())
	case errors.Is(err, errUnsupportedMedia):
		httputil.WriteUnsupportedMediaType(w, ErrMsgUnsupportedContentType)
	case errors.Is(err, errTooLarge), errors.As(err, &maxErr):
		httputil.WritePayloadTooLarge(w, ErrMsgUploadTooLarge)
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFound(w, ErrMsgMockNotFound)
	case errors.Is(err, storage.ErrEmptyPatch):
		httputil.WriteBadRequest(w, "patch must set at least one of status code, response type or response data")
	default:
		log.Error("operation failed", "operation", operation, "error", err)
		httputil.WriteInternalError(w, ErrMsgInternalError)
	}
}
