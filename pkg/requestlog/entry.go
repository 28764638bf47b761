package requestlog

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// MaxBodyCapture is the largest request body kept in an Entry.
const MaxBodyCapture = 1 << 20 // 1MB

// Entry is one request received by the mock dispatcher.
type Entry struct {
	// ID is assigned by the sink when empty.
	ID string `json:"id"`

	Method string `json:"method"`
	Path   string `json:"path"`

	// Body is the request body when it parsed as JSON and fit within
	// MaxBodyCapture. Nil otherwise.
	Body json.RawMessage `json:"body,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Capture builds an Entry from r. The body is read up to MaxBodyCapture and
// kept only when it is valid JSON. r.Body is replaced so later handlers can
// still read the full body.
func Capture(r *http.Request) *Entry {
	e := &Entry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Timestamp: time.Now(),
	}
	if r.Body == nil || r.Body == http.NoBody {
		return e
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyCapture+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	if err != nil || len(head) == 0 || len(head) > MaxBodyCapture {
		return e
	}
	if json.Valid(head) {
		e.Body = json.RawMessage(bytes.Clone(head))
	}
	return e
}
