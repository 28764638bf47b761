// Package requestlog records the requests that reach the mock dispatcher.
//
// It is distinct from operational logging (log/slog): entries are data kept
// for users who want to see what traffic a mock server received.
//
// Recording is fire-and-forget. Recorder.Record hands an Entry to a bounded
// queue and returns immediately; a single background goroutine writes queued
// entries to a Sink. A full queue drops the entry and a failing sink has its
// error logged at debug level and discarded. Neither ever reaches the request
// that produced the entry.
//
//	rec := requestlog.NewRecorder(requestlog.NewMemoryStore(1000))
//	defer rec.Close()
//	rec.Record(requestlog.Capture(r))
package requestlog
