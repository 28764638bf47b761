// Package storagetest holds the behavioral tests every storage.MockStore
// implementation must pass.
package storagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/mock"
)

// Run exercises a MockStore. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.MockStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("DefineThenLookup", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("get", "foo", 201, "bar")))

		got, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/foo"))
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "GET", got.Method)
		assert.Equal(t, "/foo", got.Path)
		assert.Equal(t, 201, got.StatusCode)
		assert.Equal(t, mock.ResponseText, got.ResponseType)
		assert.Equal(t, mock.TextData{Value: "bar"}, got.Data)
	})

	t.Run("LookupNormalizesKey", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("GET", "/foo", 200, "x")))

		_, err := s.Lookup(ctx, mock.Key{Method: "get", Path: "foo"})
		assert.NoError(t, err)
	})

	t.Run("LookupMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/missing"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("LookupIsExactMatch", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("GET", "/api", 200, "x")))

		for _, k := range []mock.Key{{Method: "GET", Path: "/api/users"}, {Method: "GET", Path: "/ap"}, {Method: "POST", Path: "/api"}} {
			_, err := s.Lookup(ctx, k)
			assert.ErrorIs(t, err, storage.ErrNotFound, k.String())
		}
	})

	t.Run("DefineReplacesWholesale", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("GET", "/foo", 418, "old")))
		first, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/foo"))
		require.NoError(t, err)

		replacement := &mock.Definition{
			Method: "get", Path: "/foo",
			ResponseType: mock.ResponseJSON,
			Data:         mock.JSONData{Raw: json.RawMessage(`{"v":2}`)},
		}
		require.NoError(t, s.Define(ctx, replacement))

		got, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/foo"))
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, mock.DefaultStatusCode, got.StatusCode)
		assert.Equal(t, mock.ResponseJSON, got.ResponseType)
		assert.JSONEq(t, `{"v":2}`, string(got.Data.(mock.JSONData).Raw))

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("DefineFilePayloads", func(t *testing.T) {
		s := newStore(t)
		local := &mock.Definition{Method: "GET", Path: "/l", StatusCode: 200, ResponseType: mock.ResponseFile,
			Data: mock.FileData{Locator: blob.LocalLocator{Path: "uploads/abc_a.txt"}}}
		remote := &mock.Definition{Method: "GET", Path: "/r", StatusCode: 200, ResponseType: mock.ResponseFile,
			Data: mock.FileData{Locator: blob.RemoteLocator{Bucket: "b", Key: "abc_a.txt"}}}
		require.NoError(t, s.Define(ctx, local))
		require.NoError(t, s.Define(ctx, remote))

		got, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/l"))
		require.NoError(t, err)
		assert.Equal(t, local.Data, got.Data)

		got, err = s.Lookup(ctx, mock.NormalizeKey("GET", "/r"))
		require.NoError(t, err)
		assert.Equal(t, remote.Data, got.Data)
	})

	t.Run("PatchUpdatesOnlySuppliedFields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("GET", "/p", 200, "body")))

		status := 503
		require.NoError(t, s.Patch(ctx, mock.NormalizeKey("get", "p"), mock.Patch{StatusCode: &status}))

		got, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/p"))
		require.NoError(t, err)
		assert.Equal(t, 503, got.StatusCode)
		assert.Equal(t, mock.ResponseText, got.ResponseType)
		assert.Equal(t, mock.TextData{Value: "body"}, got.Data)

		jsonType := mock.ResponseJSON
		require.NoError(t, s.Patch(ctx, mock.NormalizeKey("GET", "/p"), mock.Patch{
			ResponseType: &jsonType,
			Data:         mock.JSONData{Raw: json.RawMessage(`[1,2]`)},
		}))
		got, err = s.Lookup(ctx, mock.NormalizeKey("GET", "/p"))
		require.NoError(t, err)
		assert.Equal(t, 503, got.StatusCode)
		assert.Equal(t, mock.ResponseJSON, got.ResponseType)
		assert.JSONEq(t, `[1,2]`, string(got.Data.(mock.JSONData).Raw))
	})

	t.Run("PatchNeverCreates", func(t *testing.T) {
		s := newStore(t)
		status := 404
		err := s.Patch(ctx, mock.NormalizeKey("GET", "/missing"), mock.Patch{StatusCode: &status})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.Lookup(ctx, mock.NormalizeKey("GET", "/missing"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("PatchEmpty", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("GET", "/e", 200, "x")))
		assert.ErrorIs(t, s.Patch(ctx, mock.NormalizeKey("GET", "/e"), mock.Patch{}), storage.ErrEmptyPatch)
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		s := newStore(t)
		def := textDef("GET", "/c", 200, "x")
		require.NoError(t, s.Define(ctx, def))
		def.StatusCode = 500

		got, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/c"))
		require.NoError(t, err)
		got.StatusCode = 501

		again, err := s.Lookup(ctx, mock.NormalizeKey("GET", "/c"))
		require.NoError(t, err)
		assert.Equal(t, 200, again.StatusCode)
	})

	t.Run("ListOrdered", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Define(ctx, textDef("POST", "/b", 200, "x")))
		require.NoError(t, s.Define(ctx, textDef("GET", "/b", 200, "x")))
		require.NoError(t, s.Define(ctx, textDef("GET", "/a", 200, "x")))

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "GET /a", all[0].Key().String())
		assert.Equal(t, "GET /b", all[1].Key().String())
		assert.Equal(t, "POST /b", all[2].Key().String())
	})

	t.Run("ConcurrentDefineSameKey", func(t *testing.T) {
		s := newStore(t)
		const writers = 16
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				body := fmt.Sprintf(`{"writer":%d,"payload":"%s"}`, i, fmt.Sprint(i))
				d := &mock.Definition{
					Method: "PUT", Path: "/race", StatusCode: 200 + i,
					ResponseType: mock.ResponseJSON,
					Data:         mock.JSONData{Raw: json.RawMessage(body)},
				}
				assert.NoError(t, s.Define(ctx, d))
			}(i)
		}
		wg.Wait()

		got, err := s.Lookup(ctx, mock.NormalizeKey("PUT", "/race"))
		require.NoError(t, err)

		var payload struct {
			Writer  int    `json:"writer"`
			Payload string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(got.Data.(mock.JSONData).Raw, &payload))
		assert.Equal(t, fmt.Sprint(payload.Writer), payload.Payload, "payload blended across writers")
		assert.Equal(t, 200+payload.Writer, got.StatusCode, "status from a different writer than payload")

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func textDef(method, path string, status int, body string) *mock.Definition {
	return &mock.Definition{
		Method:       method,
		Path:         path,
		StatusCode:   status,
		ResponseType: mock.ResponseText,
		Data:         mock.TextData{Value: body},
	}
}
