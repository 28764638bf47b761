// Decoding of define and patch requests.

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/getmockd/mockserve/pkg/blob"
	"github.com/getmockd/mockserve/pkg/mock"
)

// Accepted spellings, in precedence order. The first one present wins.
var (
	statusAliases       = []string{"statusCode", "status", "http_status_code", "status_code", "httpStatusCode"}
	responseTypeAliases = []string{"responseType", "response_type"}
	responseDataAliases = []string{"responseData", "response_data"}

	multipartStatusAliases = []string{"status", "status_code", "http_status_code"}
)

// maxFieldSize caps a non-file multipart field.
const maxFieldSize = 64 << 10

// defaultUploadName names an uploaded file part that carries no filename.
const defaultUploadName = "upload.bin"

type bodyKind int

const (
	bodyJSON bodyKind = iota
	bodyMultipart
)

// classifyBody returns the body kind for a Content-Type header value.
func classifyBody(contentType string) (bodyKind, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return 0, errUnsupportedMedia
	}
	switch {
	case mediaType == "application/json":
		return bodyJSON, nil
	case mediaType == "multipart/form-data":
		return bodyMultipart, nil
	default:
		return 0, errUnsupportedMedia
	}
}

// jsonFields is a request body decoded one level deep.
type jsonFields map[string]json.RawMessage

func readJSONFields(r io.Reader) (jsonFields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	var fields jsonFields
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, invalid("", ErrMsgInvalidJSON)
	}
	return fields, nil
}

// first returns the value of the first alias present.
func (f jsonFields) first(aliases []string) (string, json.RawMessage, bool) {
	for _, name := range aliases {
		if raw, ok := f[name]; ok {
			return name, raw, true
		}
	}
	return "", nil, false
}

func (f jsonFields) requiredString(name string) (string, error) {
	raw, ok := f[name]
	if !ok {
		return "", invalid(name, "is required")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid(name, "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", invalid(name, "must not be empty")
	}
	return s, nil
}

func (f jsonFields) key() (mock.Key, error) {
	method, err := f.requiredString("method")
	if err != nil {
		return mock.Key{}, err
	}
	path, err := f.requiredString("path")
	if err != nil {
		return mock.Key{}, err
	}
	return mock.NormalizeKey(method, path), nil
}

func (f jsonFields) statusCode() (*int, error) {
	name, raw, ok := f.first(statusAliases)
	if !ok {
		return nil, nil
	}
	var code int
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, invalid(name, "must be an integer")
	}
	return &code, nil
}

func (f jsonFields) responseType() (*mock.ResponseType, error) {
	name, raw, ok := f.first(responseTypeAliases)
	if !ok {
		return nil, nil
	}
	var rt mock.ResponseType
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, invalid(name, err.Error())
	}
	return &rt, nil
}

// decodeDefineJSON reads a JSON define request.
func decodeDefineJSON(r io.Reader) (*mock.Definition, error) {
	fields, err := readJSONFields(r)
	if err != nil {
		return nil, err
	}
	key, err := fields.key()
	if err != nil {
		return nil, err
	}
	rt, err := fields.responseType()
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, invalid("responseType", "is required")
	}
	status, err := fields.statusCode()
	if err != nil {
		return nil, err
	}

	_, raw, _ := fields.first(responseDataAliases)
	data, err := mock.DecodePayload(*rt, raw)
	if err != nil {
		return nil, invalid("responseData", err.Error())
	}

	d := &mock.Definition{
		Method:       key.Method,
		Path:         key.Path,
		StatusCode:   mock.DefaultStatusCode,
		ResponseType: *rt,
		Data:         data,
	}
	if status != nil {
		d.StatusCode = *status
	}
	return d, nil
}

// decodePatchJSON reads a JSON patch request.
func decodePatchJSON(r io.Reader) (mock.Key, mock.Patch, error) {
	fields, err := readJSONFields(r)
	if err != nil {
		return mock.Key{}, mock.Patch{}, err
	}
	key, err := fields.key()
	if err != nil {
		return mock.Key{}, mock.Patch{}, err
	}

	var p mock.Patch
	if p.StatusCode, err = fields.statusCode(); err != nil {
		return mock.Key{}, mock.Patch{}, err
	}
	if p.ResponseType, err = fields.responseType(); err != nil {
		return mock.Key{}, mock.Patch{}, err
	}
	if _, raw, ok := fields.first(responseDataAliases); ok {
		var rt mock.ResponseType
		if p.ResponseType != nil {
			rt = *p.ResponseType
		}
		if p.Data, err = mock.DecodePayload(rt, raw); err != nil {
			return mock.Key{}, mock.Patch{}, invalid("responseData", err.Error())
		}
	}
	if p.IsEmpty() {
		return mock.Key{}, mock.Patch{}, invalid("", "patch must set at least one of status code, response type or response data")
	}
	return key, p, nil
}

// upload is a decoded multipart define request. The file content is held
// until the other fields have been validated.
type upload struct {
	key      mock.Key
	status   int
	filename string
	data     []byte
}

// decodeUpload streams a multipart define request. Fields may arrive in any
// order; the file part is required and response_type is ignored.
func decodeUpload(r *http.Request) (*upload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, invalid("", ErrMsgInvalidMultipart)
	}

	var (
		method, path string
		status       *int
		haveFile     bool
		u            = &upload{status: mock.DefaultStatusCode}
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, multipartError(err)
		}

		name := part.FormName()
		switch {
		case name == "method":
			if method, err = readField(part); err != nil {
				return nil, err
			}
		case name == "path":
			if path, err = readField(part); err != nil {
				return nil, err
			}
		case slices.Contains(multipartStatusAliases, name):
			value, err := readField(part)
			if err != nil {
				return nil, err
			}
			if status != nil {
				break
			}
			code, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, invalid(name, "must be an integer")
			}
			status = &code
		case name == "file" && !haveFile:
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, multipartError(err)
			}
			u.data = data
			u.filename = part.FileName()
			if u.filename == "" {
				u.filename = defaultUploadName
			}
			haveFile = true
		}
		_ = part.Close()
	}

	switch {
	case strings.TrimSpace(method) == "":
		return nil, invalid("method", "is required")
	case strings.TrimSpace(path) == "":
		return nil, invalid("path", "is required")
	case !haveFile:
		return nil, invalid("file", "is required")
	}
	u.key = mock.NormalizeKey(method, path)
	if status != nil {
		u.status = *status
	}
	return u, nil
}

// store writes the uploaded content and returns the resulting definition.
func (u *upload) store(ctx context.Context, blobs *blob.Storage) (*mock.Definition, blob.Locator, error) {
	loc, err := blobs.Ingest(ctx, u.data, u.filename)
	if err != nil {
		return nil, nil, err
	}
	def := &mock.Definition{
		Method:       u.key.Method,
		Path:         u.key.Path,
		StatusCode:   u.status,
		ResponseType: mock.ResponseFile,
		Data:         mock.FileData{Locator: loc},
	}
	return def, loc, nil
}

func readField(part io.Reader) (string, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(part, maxFieldSize+1))
	if err != nil {
		return "", multipartError(err)
	}
	if n > maxFieldSize {
		return "", invalid("", "form field too large")
	}
	return buf.String(), nil
}

func multipartError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errTooLarge
	}
	return invalid("", ErrMsgInvalidMultipart)
}
