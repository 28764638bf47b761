// Core HTTP request handler for the mock server.

package engine

import (
	"encoding/json"
	"net/http"

	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/httputil"
	"github.com/getmockd/mockserve/pkg/requestlog"
)

// MocksPath is where mocks are defined and patched.
const MocksPath = "/mocks"

// Handler routes requests to the health probe, the mock API or dispatch.
type Handler struct {
	deps       Deps
	dispatcher *Dispatcher
}

// NewHandler creates a Handler.
func NewHandler(deps Deps) *Handler {
	deps = deps.withDefaults()
	return &Handler{
		deps:       deps,
		dispatcher: NewDispatcher(deps.Store, deps.Blobs, deps.Log),
	}
}

// ServeHTTP routes on exact path and method. Anything that is not the health
// probe or the mock API is dispatched, including GET /mocks.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		h.handleHealth(w, r)
	case r.URL.Path == MocksPath && r.Method == http.MethodPost:
		h.handleDefine(w, r)
	case r.URL.Path == MocksPath && r.Method == http.MethodPatch:
		h.handlePatch(w, r)
	default:
		h.handleDispatch(w, r)
	}
}

// handleHealth handles the liveness probe.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, map[string]string{"status": "ok"})
}

// defineResponse acknowledges a define or patch. File is set for uploads.
type defineResponse struct {
	Status string          `json:"status"`
	File   json.RawMessage `json:"file,omitempty"`
}

// handleDefine creates or replaces a mock from a JSON body or a multipart
// upload.
func (h *Handler) handleDefine(w http.ResponseWriter, r *http.Request) {
	kind, err := classifyBody(r.Header.Get("Content-Type"))
	if err != nil {
		writeRequestError(w, h.deps.Log, "define mock", err)
		return
	}

	if kind == bodyMultipart {
		h.handleUpload(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	def, err := decodeDefineJSON(r.Body)
	if err != nil {
		writeRequestError(w, h.deps.Log, "define mock", err)
		return
	}
	if err := h.deps.Store.Define(r.Context(), def); err != nil {
		writeRequestError(w, h.deps.Log, "define mock", err)
		return
	}

	h.deps.Log.Info("mock defined", "method", def.Method, "path", def.Path, "type", def.ResponseType, "status", def.StatusCode)
	httputil.WriteOK(w, defineResponse{Status: "ok"})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadSize)
	u, err := decodeUpload(r)
	if err != nil {
		writeRequestError(w, h.deps.Log, "upload mock", err)
		return
	}

	def, loc, err := u.store(r.Context(), h.deps.Blobs)
	if err != nil {
		writeRequestError(w, h.deps.Log, "upload mock", err)
		return
	}
	if err := h.deps.Store.Define(r.Context(), def); err != nil {
		writeRequestError(w, h.deps.Log, "upload mock", err)
		return
	}
	file, err := blob.MarshalLocator(loc)
	if err != nil {
		writeRequestError(w, h.deps.Log, "upload mock", err)
		return
	}

	h.deps.Log.Info("file mock defined", "method", def.Method, "path", def.Path, "size", len(u.data))
	httputil.WriteOK(w, defineResponse{Status: "ok", File: file})
}

// handlePatch updates selected fields of an existing mock. JSON only.
func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request) {
	kind, err := classifyBody(r.Header.Get("Content-Type"))
	if err == nil && kind != bodyJSON {
		err = errUnsupportedMedia
	}
	if err != nil {
		writeRequestError(w, h.deps.Log, "patch mock", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	key, patch, err := decodePatchJSON(r.Body)
	if err != nil {
		writeRequestError(w, h.deps.Log, "patch mock", err)
		return
	}
	if err := h.deps.Store.Patch(r.Context(), key, patch); err != nil {
		writeRequestError(w, h.deps.Log, "patch mock", err)
		return
	}

	h.deps.Log.Info("mock patched", "method", key.Method, "path", key.Path)
	httputil.WriteOK(w, defineResponse{Status: "ok"})
}

// handleDispatch records the request and serves the matching mock.
func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	h.deps.Recorder.Record(requestlog.Capture(r))
	h.dispatcher.ServeHTTP(w, r)
}
