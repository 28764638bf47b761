package requestlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getmockd/mockserve/pkg/logging"
)

// DefaultQueueSize is the number of pending entries a Recorder buffers.
const DefaultQueueSize = 1024

// writeTimeout bounds a single sink write.
const writeTimeout = 5 * time.Second

// Recorder writes entries to a Sink from a single background goroutine.
type Recorder struct {
	sink  Sink
	queue chan *Entry
	log   *slog.Logger

	dropped atomic.Int64
	failed  atomic.Int64

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan *Entry, n)
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRecorder starts a Recorder writing to sink.
func NewRecorder(sink Sink, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sink:  sink,
		queue: make(chan *Entry, DefaultQueueSize),
		log:   logging.Nop(),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// Record enqueues e without blocking. The entry is dropped when the queue
// is full or the recorder is closed.
func (r *Recorder) Record(e *Entry) {
	if e == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.queue <- e:
	default:
		r.dropped.Add(1)
		r.log.Debug("request log queue full, dropping entry", "method", e.Method, "path", e.Path)
	}
}

// Dropped returns the number of entries discarded because the queue was full.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Failed returns the number of entries the sink rejected.
func (r *Recorder) Failed() int64 { return r.failed.Load() }

// Close stops accepting entries and waits for queued ones to be written or
// for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		r.write(e)
	}
}

func (r *Recorder) write(e *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.sink.Write(ctx, e); err != nil {
		r.failed.Add(1)
		r.log.Debug("failed to record request", "method", e.Method, "path", e.Path, "error", err)
	}
}

var _ Logger = (*Recorder)(nil)
