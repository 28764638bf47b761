package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/getmockd/mockserve/internal/id"
	"github.com/getmockd/mockserve/pkg/requestlog"
)

type requestDocument struct {
	ID        string    `bson:"_id"`
	Method    string    `bson:"method"`
	Path      string    `bson:"path"`
	Body      any       `bson:"body"`
	Timestamp time.Time `bson:"timestamp"`
}

// RequestSink appends request log entries to the requests collection.
type RequestSink struct {
	coll *mongo.Collection
}

// Write inserts e. The body is stored as a native document, or null.
func (s *RequestSink) Write(ctx context.Context, e *requestlog.Entry) error {
	if e == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = id.ULID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	doc := requestDocument{
		ID:        e.ID,
		Method:    e.Method,
		Path:      e.Path,
		Timestamp: e.Timestamp.UTC(),
	}
	if len(e.Body) > 0 {
		body, err := jsonToValue(e.Body)
		if err != nil {
			return err
		}
		doc.Body = body
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}

var _ requestlog.Sink = (*RequestSink)(nil)
