package blob

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Locator
		wantErr bool
	}{
		{name: "local path", raw: `"uploads/abc_x.txt"`, want: LocalLocator{Path: "uploads/abc_x.txt"}},
		{name: "remote object", raw: `{"bucket":"b","key":"k"}`, want: RemoteLocator{Bucket: "b", Key: "k"}},
		{name: "empty path", raw: `""`, wantErr: true},
		{name: "missing key", raw: `{"bucket":"b"}`, wantErr: true},
		{name: "number", raw: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocator(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocator)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshalLocator(t *testing.T) {
	raw, err := MarshalLocator(LocalLocator{Path: "uploads/a.txt"})
	require.NoError(t, err)
	assert.JSONEq(t, `"uploads/a.txt"`, string(raw))

	raw, err = MarshalLocator(RemoteLocator{Bucket: "b", Key: "dir/k.txt"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bucket":"b","key":"dir/k.txt"}`, string(raw))

	_, err = MarshalLocator(nil)
	assert.ErrorIs(t, err, ErrInvalidLocator)
}

func TestLocatorFilename(t *testing.T) {
	assert.Equal(t, "abc_x.txt", LocalLocator{Path: "uploads/abc_x.txt"}.Filename())
	assert.Equal(t, "k.txt", RemoteLocator{Key: "dir/k.txt"}.Filename())
	assert.Equal(t, "download", RemoteLocator{Key: ""}.Filename())
}
