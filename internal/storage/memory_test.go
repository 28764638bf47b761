package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/internal/storage/storagetest"
	"github.com/getmockd/mockserve/pkg/mock"
)

func TestInMemoryMockStore(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.MockStore {
		return storage.NewInMemoryMockStore()
	})
}

func TestInMemoryMockStore_DefineNil(t *testing.T) {
	s := storage.NewInMemoryMockStore()
	require.NoError(t, s.Define(context.Background(), nil))
	assert.Equal(t, 0, s.Count())
}

func TestInMemoryMockStore_Load(t *testing.T) {
	s := storage.NewInMemoryMockStore()
	s.Load([]*mock.Definition{
		{ID: "a", Method: "get", Path: "x", ResponseType: mock.ResponseText, Data: mock.TextData{Value: "1"}},
		{Method: "GET", Path: "/x", ResponseType: mock.ResponseText, Data: mock.TextData{Value: "2"}},
		nil,
		{Method: "POST", Path: "/y", ResponseType: mock.ResponseText, Data: mock.TextData{Value: "3"}},
	})
	assert.Equal(t, 2, s.Count())

	got, err := s.Lookup(context.Background(), mock.NormalizeKey("GET", "/x"))
	require.NoError(t, err)
	assert.Equal(t, mock.TextData{Value: "2"}, got.Data)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, mock.DefaultStatusCode, got.StatusCode)
}
