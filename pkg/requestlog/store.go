package requestlog

import "context"

// Sink persists entries. Implementations must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, e *Entry) error
}

// Logger is the minimal interface handlers use to record requests.
type Logger interface {
	Record(e *Entry)
}

// Store is a Sink that can also be queried.
type Store interface {
	Sink

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Count returns the number of stored entries.
	Count() int
}

// Filter defines criteria for listing entries.
type Filter struct {
	// Method filters by exact method.
	Method string

	// Path filters by path prefix.
	Path string

	// Limit is the maximum number of entries to return.
	Limit int
}
