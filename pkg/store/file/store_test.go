package file

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/internal/storage/storagetest"
	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/mock"
)

// newTestStore creates an opened FileStore on an in-memory filesystem.
func newTestStore(t *testing.T, fsys afero.Fs) *FileStore {
	t.Helper()
	s := New("/data/mocks.json", WithFs(fsys), WithSaveDebounce(10*time.Millisecond))
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStore_MockStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.MockStore {
		return newTestStore(t, afero.NewMemMapFs())
	})
}

func TestFileStore_OpenMissingFile(t *testing.T) {
	s := newTestStore(t, afero.NewMemMapFs())
	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileStore_OpenCorruptFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data/mocks.json", []byte("{not json"), 0600))

	s := New("/data/mocks.json", WithFs(fsys))
	defer s.Close()
	assert.Error(t, s.Open(context.Background()))
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ctx := context.Background()

	first := New("/data/mocks.json", WithFs(fsys), WithSaveDebounce(time.Hour))
	require.NoError(t, first.Open(ctx))
	require.NoError(t, first.Define(ctx, &mock.Definition{
		Method: "GET", Path: "/users", StatusCode: 201,
		ResponseType: mock.ResponseJSON,
		Data:         mock.JSONData{Raw: json.RawMessage(`{"id":1}`)},
	}))
	require.NoError(t, first.Define(ctx, &mock.Definition{
		Method: "GET", Path: "/report", StatusCode: 200,
		ResponseType: mock.ResponseFile,
		Data:         mock.FileData{Locator: blob.RemoteLocator{Bucket: "b", Key: "k_report.pdf"}},
	}))
	status := 202
	require.NoError(t, first.Patch(ctx, mock.NormalizeKey("GET", "/users"), mock.Patch{StatusCode: &status}))
	// Close flushes even though the debounce never fired.
	require.NoError(t, first.Close())

	second := New("/data/mocks.json", WithFs(fsys))
	require.NoError(t, second.Open(ctx))
	defer second.Close()

	users, err := second.Lookup(ctx, mock.NormalizeKey("GET", "/users"))
	require.NoError(t, err)
	assert.Equal(t, 202, users.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(users.Data.(mock.JSONData).Raw))

	report, err := second.Lookup(ctx, mock.NormalizeKey("GET", "/report"))
	require.NoError(t, err)
	assert.Equal(t, mock.FileData{Locator: blob.RemoteLocator{Bucket: "b", Key: "k_report.pdf"}}, report.Data)
}

func TestFileStore_DebouncedSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := newTestStore(t, fsys)
	ctx := context.Background()

	require.NoError(t, s.Define(ctx, &mock.Definition{
		Method: "POST", Path: "/orders", StatusCode: 200,
		ResponseType: mock.ResponseText, Data: mock.TextData{Value: "ok"},
	}))

	assert.Eventually(t, func() bool {
		data, err := afero.ReadFile(fsys, "/data/mocks.json")
		if err != nil {
			return false
		}
		var stored storeData
		return json.Unmarshal(data, &stored) == nil && len(stored.Mocks) == 1
	}, 2*time.Second, 10*time.Millisecond)

	exists, err := afero.Exists(fsys, "/data/mocks.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file must be renamed away")
}

func TestFileStore_FailedWritesDoNotSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := newTestStore(t, fsys)
	status := 500

	err := s.Patch(context.Background(), mock.NormalizeKey("GET", "/nothing"), mock.Patch{StatusCode: &status})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, s.dirty.Load())
}

func TestFileStore_ForceSaveOnReadOnlyFs(t *testing.T) {
	base := afero.NewMemMapFs()
	s := New("/data/mocks.json", WithFs(afero.NewReadOnlyFs(base)))
	defer s.Close()

	assert.Error(t, s.ForceSave())
}

func TestFileStore_FileLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "mocks.json")
	s := New(path)
	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Define(context.Background(), &mock.Definition{
		Method: "get", Path: "health", ResponseType: mock.ResponseText, Data: mock.TextData{Value: "up"},
	}))
	require.NoError(t, s.Close())

	data, err := afero.ReadFile(afero.NewOsFs(), path)
	require.NoError(t, err)

	var raw struct {
		Version int              `json:"version"`
		Mocks   []map[string]any `json:"mocks"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 1, raw.Version)
	require.Len(t, raw.Mocks, 1)
	assert.Equal(t, "GET", raw.Mocks[0]["method"])
	assert.Equal(t, "/health", raw.Mocks[0]["path"])
	assert.Equal(t, float64(200), raw.Mocks[0]["http_status_code"])
	assert.Equal(t, "text", raw.Mocks[0]["response_type"])
	assert.Equal(t, "up", raw.Mocks[0]["response_data"])
}
