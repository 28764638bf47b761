package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"foo": "bar"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteRawJSON(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteRawJSON(rec, http.StatusCreated, json.RawMessage(`{"id":1}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":1}`, rec.Body.String())
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteText(rec, http.StatusAccepted, "hello")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestWriteAttachment(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteAttachment(rec, http.StatusOK, "report.pdf", []byte("%PDF"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=report.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestWriteRedirect(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteRedirect(rec, "https://cdn.example.com/k")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://cdn.example.com/k", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())
}

func TestErrorWriters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		write      func(http.ResponseWriter, string)
		wantStatus int
		wantCode   string
	}{
		{"bad request", WriteBadRequest, http.StatusBadRequest, CodeValidation},
		{"not found", WriteNotFound, http.StatusNotFound, CodeNotFound},
		{"unsupported media", WriteUnsupportedMediaType, http.StatusUnsupportedMediaType, CodeUnsupportedMedia},
		{"too large", WritePayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{"internal", WriteInternalError, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()

			tt.write(rec, "something went wrong")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, "something went wrong", body["message"])
		})
	}
}
