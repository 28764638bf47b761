package engine

import (
	"log/slog"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/logging"
	"github.com/getmockd/mockserve/pkg/requestlog"
)

// DefaultMaxUploadSize caps multipart define requests (32MB).
const DefaultMaxUploadSize = 32 << 20

// maxJSONBodySize caps JSON define and patch requests (10MB).
const maxJSONBodySize = 10 << 20

// Deps are the collaborators shared by all handlers.
type Deps struct {
	// Store holds mock definitions. Required.
	Store storage.MockStore

	// Blobs stores uploaded files and serves file responses. Required.
	Blobs *blob.Storage

	// Recorder receives an entry for every dispatched request. Optional.
	Recorder requestlog.Logger

	// Log is the operational logger. Defaults to a no-op logger.
	Log *slog.Logger

	// MaxUploadSize caps multipart uploads in bytes. Defaults to
	// DefaultMaxUploadSize.
	MaxUploadSize int64
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.MaxUploadSize <= 0 {
		d.MaxUploadSize = DefaultMaxUploadSize
	}
	if d.Recorder == nil {
		d.Recorder = discardRecorder{}
	}
	return d
}

type discardRecorder struct{}

func (discardRecorder) Record(*requestlog.Entry) {}
