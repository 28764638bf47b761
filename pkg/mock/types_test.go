package mock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockserve/pkg/blob"
)

func TestParseResponseType(t *testing.T) {
	for in, want := range map[string]ResponseType{
		"json": ResponseJSON,
		"TEXT": ResponseText,
		" File ": ResponseFile,
	} {
		got, err := ParseResponseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseResponseType("xml")
	assert.Error(t, err)
}

func TestResponseType_UnmarshalJSON(t *testing.T) {
	var rt ResponseType
	require.NoError(t, json.Unmarshal([]byte(`"Json"`), &rt))
	assert.Equal(t, ResponseJSON, rt)

	assert.Error(t, json.Unmarshal([]byte(`"html"`), &rt))
	assert.Error(t, json.Unmarshal([]byte(`1`), &rt))
}

func TestDefinition_Normalize(t *testing.T) {
	d := &Definition{Method: "get", Path: "users"}
	d.Normalize()

	assert.Equal(t, "GET", d.Method)
	assert.Equal(t, "/users", d.Path)
	assert.Equal(t, DefaultStatusCode, d.StatusCode)
	assert.Equal(t, Key{"GET", "/users"}, d.Key())
}

func TestDefinition_Status(t *testing.T) {
	tests := map[int]int{0: 200, 201: 201, 404: 404, 99: 200, 1000: 200, -1: 200, 999: 999}
	for in, want := range tests {
		d := Definition{StatusCode: in}
		assert.Equal(t, want, d.Status(), "StatusCode %d", in)
	}
}

func TestDefinition_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{
			name: "json payload",
			def: Definition{ID: "1", Method: "GET", Path: "/a", StatusCode: 200,
				ResponseType: ResponseJSON, Data: JSONData{Raw: json.RawMessage(`{"ok":true}`)}},
			want: `{"id":"1","method":"GET","path":"/a","http_status_code":200,"response_type":"json","response_data":{"ok":true}}`,
		},
		{
			name: "text payload",
			def: Definition{Method: "GET", Path: "/t", StatusCode: 201,
				ResponseType: ResponseText, Data: TextData{Value: "bar"}},
			want: `{"method":"GET","path":"/t","http_status_code":201,"response_type":"text","response_data":"bar"}`,
		},
		{
			name: "local file",
			def: Definition{Method: "GET", Path: "/f", StatusCode: 200,
				ResponseType: ResponseFile, Data: FileData{Locator: blob.LocalLocator{Path: "uploads/x_a.txt"}}},
			want: `{"method":"GET","path":"/f","http_status_code":200,"response_type":"file","response_data":"uploads/x_a.txt"}`,
		},
		{
			name: "remote file",
			def: Definition{Method: "GET", Path: "/r", StatusCode: 200,
				ResponseType: ResponseFile, Data: FileData{Locator: blob.RemoteLocator{Bucket: "b", Key: "k"}}},
			want: `{"method":"GET","path":"/r","http_status_code":200,"response_type":"file","response_data":{"bucket":"b","key":"k"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.def)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var got Definition
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.def, got)
		})
	}
}

func TestDefinition_UnmarshalDefaultsStatus(t *testing.T) {
	var d Definition
	require.NoError(t, json.Unmarshal([]byte(`{"method":"GET","path":"/","response_type":"text","response_data":"x"}`), &d))
	assert.Equal(t, DefaultStatusCode, d.StatusCode)
}

func TestDefinition_Clone(t *testing.T) {
	orig := &Definition{Method: "GET", Path: "/", Data: JSONData{Raw: json.RawMessage(`[1]`)}}
	c := orig.Clone()
	c.Data.(JSONData).Raw[1] = '2'

	assert.Equal(t, `[1]`, string(orig.Data.(JSONData).Raw))
	assert.Nil(t, (*Definition)(nil).Clone())
}

func TestPatch(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())

	status := 404
	text := ResponseText
	d := &Definition{Method: "GET", Path: "/", StatusCode: 200, ResponseType: ResponseJSON, Data: JSONData{Raw: json.RawMessage(`{}`)}}

	Patch{StatusCode: &status}.Apply(d)
	assert.Equal(t, 404, d.StatusCode)
	assert.Equal(t, ResponseJSON, d.ResponseType)
	assert.Equal(t, JSONData{Raw: json.RawMessage(`{}`)}, d.Data)

	p := Patch{ResponseType: &text, Data: TextData{Value: "hi"}}
	assert.False(t, p.IsEmpty())
	p.Apply(d)
	assert.Equal(t, 404, d.StatusCode)
	assert.Equal(t, ResponseText, d.ResponseType)
	assert.Equal(t, TextData{Value: "hi"}, d.Data)
}
