package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/httputil"
	"github.com/getmockd/mockserve/pkg/logging"
	"github.com/getmockd/mockserve/pkg/mock"
)

// Dispatcher answers a request with the mock stored under its route key.
type Dispatcher struct {
	store storage.MockStore
	blobs *blob.Storage
	log   *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store storage.MockStore, blobs *blob.Storage, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{store: store, blobs: blobs, log: log}
}

// fallbackResponse is the body served when no mock matches.
type fallbackResponse struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Status string `json:"status"`
}

// ServeHTTP looks up the request's route key and writes the stored response.
// An unmatched key is answered with 200 and a generic "mocked" body.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := mock.NormalizeKey(r.Method, r.URL.Path)

	def, err := d.store.Lookup(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteOK(w, fallbackResponse{Path: key.Path, Method: key.Method, Status: "mocked"})
		return
	}
	if err != nil {
		d.log.Error("mock lookup failed", "method", key.Method, "path", key.Path, "error", err)
		httputil.WriteInternalError(w, ErrMsgInternalError)
		return
	}

	d.log.Debug("serving mock", "method", key.Method, "path", key.Path, "type", def.ResponseType)
	d.Write(r.Context(), w, def)
}

// Write renders def to w.
func (d *Dispatcher) Write(ctx context.Context, w http.ResponseWriter, def *mock.Definition) {
	status := def.Status()

	switch def.ResponseType {
	case mock.ResponseText:
		httputil.WriteText(w, status, mock.AsText(def.Data))
	case mock.ResponseFile:
		d.writeFile(ctx, w, status, def)
	default:
		raw, err := mock.EncodePayload(def.Data)
		if err != nil {
			d.log.Error("encode mock response failed", "key", def.Key().String(), "error", err)
			httputil.WriteInternalError(w, ErrMsgInternalError)
			return
		}
		httputil.WriteRawJSON(w, status, raw)
	}
}

func (d *Dispatcher) writeFile(ctx context.Context, w http.ResponseWriter, status int, def *mock.Definition) {
	loc, ok := mock.AsLocator(def.Data)
	if !ok {
		d.log.Warn("file mock has no usable locator", "key", def.Key().String())
		httputil.WriteNotFound(w, ErrMsgFileNotFound)
		return
	}

	switch out := d.blobs.Retrieve(ctx, loc).(type) {
	case blob.Redirect:
		httputil.WriteRedirect(w, out.URL)
	case blob.Stream:
		httputil.WriteAttachment(w, status, out.Filename, out.Data)
	case blob.ReadFailure:
		d.log.Error("file mock read failed", "key", def.Key().String(), "error", out.Err)
		httputil.WriteInternalError(w, ErrMsgFileReadFailed)
	default:
		httputil.WriteNotFound(w, ErrMsgFileNotFound)
	}
}
