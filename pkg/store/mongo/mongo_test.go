package mongo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/mock"
)

func TestToBSONValue(t *testing.T) {
	tests := []struct {
		name    string
		payload mock.Payload
		want    any
	}{
		{name: "text", payload: mock.TextData{Value: "hello"}, want: "hello"},
		{name: "null", payload: nil, want: nil},
		{name: "local file", payload: mock.FileData{Locator: blob.LocalLocator{Path: "uploads/a.txt"}}, want: "uploads/a.txt"},
		{
			name:    "remote file",
			payload: mock.FileData{Locator: blob.RemoteLocator{Bucket: "b", Key: "k"}},
			want:    map[string]any{"bucket": "b", "key": "k"},
		},
		{
			name:    "json object",
			payload: mock.JSONData{Raw: json.RawMessage(`{"n":1,"ok":true}`)},
			want:    map[string]any{"n": json.Number("1"), "ok": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toBSONValue(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMockDocument_Definition(t *testing.T) {
	tests := []struct {
		name string
		doc  mockDocument
		want mock.Payload
	}{
		{
			name: "json document",
			doc: mockDocument{ResponseType: "json", StatusCode: 201,
				ResponseData: bson.M{"id": int64(7), "tags": bson.A{"a", "b"}}},
			want: mock.JSONData{Raw: json.RawMessage(`{"id":7,"tags":["a","b"]}`)},
		},
		{
			name: "text",
			doc:  mockDocument{ResponseType: "text", StatusCode: 201, ResponseData: "pong"},
			want: mock.TextData{Value: "pong"},
		},
		{
			name: "legacy file path",
			doc:  mockDocument{ResponseType: "file", StatusCode: 201, ResponseData: "src/uploads/x.bin"},
			want: mock.FileData{Locator: blob.LocalLocator{Path: "src/uploads/x.bin"}},
		},
		{
			name: "remote file",
			doc:  mockDocument{ResponseType: "file", StatusCode: 201, ResponseData: bson.M{"bucket": "b", "key": "k"}},
			want: mock.FileData{Locator: blob.RemoteLocator{Bucket: "b", Key: "k"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doc.Method, tt.doc.Path = "GET", "/x"
			d, err := tt.doc.definition()
			require.NoError(t, err)
			assert.Equal(t, 201, d.StatusCode)
			if want, ok := tt.want.(mock.JSONData); ok {
				got, ok := d.Data.(mock.JSONData)
				require.True(t, ok)
				assert.JSONEq(t, string(want.Raw), string(got.Raw))
				return
			}
			assert.Equal(t, tt.want, d.Data)
		})
	}
}

func TestMockDocument_DefaultsStatus(t *testing.T) {
	doc := mockDocument{Method: "GET", Path: "/x", ResponseType: "JSON", ResponseData: nil}
	d, err := doc.definition()
	require.NoError(t, err)
	assert.Equal(t, mock.DefaultStatusCode, d.StatusCode)
	assert.Equal(t, mock.ResponseJSON, d.ResponseType)
}
