package mock

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/getmockd/mockserve/pkg/blob"
)

// Payload is the response data of a definition. It is one of JSONData,
// TextData or FileData.
type Payload interface {
	payload()
}

// JSONData is an arbitrary JSON value written as the response body.
type JSONData struct {
	Raw json.RawMessage
}

// TextData is a plain text body.
type TextData struct {
	Value string
}

// FileData references uploaded bytes on local disk or in a bucket.
type FileData struct {
	Locator blob.Locator
}

func (JSONData) payload() {}
func (TextData) payload() {}
func (FileData) payload() {}

var jsonNull = json.RawMessage("null")

// DecodePayload reads response data in its canonical JSON form. The response
// type decides the variant: a string becomes TextData for text, a path or
// {"bucket","key"} object becomes FileData for file. Values that do not fit
// the type are kept as JSONData so nothing submitted is lost. An empty
// response type (a patch without one) keeps strings as text and everything
// else as JSON.
func DecodePayload(t ResponseType, raw json.RawMessage) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = jsonNull
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("response data is not valid JSON")
	}

	switch t {
	case ResponseFile:
		if loc, err := blob.ParseLocator(raw); err == nil {
			return FileData{Locator: loc}, nil
		}
	case ResponseText, "":
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return TextData{Value: s}, nil
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, fmt.Errorf("response data: %w", err)
	}
	return JSONData{Raw: compact.Bytes()}, nil
}

// EncodePayload returns the canonical JSON form of p: the value itself for
// JSONData, a string for TextData, and a path or {"bucket","key"} object for
// FileData. A nil payload encodes as null.
func EncodePayload(p Payload) (json.RawMessage, error) {
	switch v := p.(type) {
	case nil:
		return jsonNull, nil
	case JSONData:
		if len(v.Raw) == 0 {
			return jsonNull, nil
		}
		return v.Raw, nil
	case TextData:
		return json.Marshal(v.Value)
	case FileData:
		return blob.MarshalLocator(v.Locator)
	default:
		return nil, fmt.Errorf("unknown payload type %T", p)
	}
}

// AsText returns the payload as a string, or "" when it is not textual.
func AsText(p Payload) string {
	switch v := p.(type) {
	case TextData:
		return v.Value
	case JSONData:
		var s string
		if err := json.Unmarshal(v.Raw, &s); err == nil {
			return s
		}
	}
	return ""
}

// AsLocator returns the file locator the payload refers to, if any.
// A text payload is read as a local path.
func AsLocator(p Payload) (blob.Locator, bool) {
	switch v := p.(type) {
	case FileData:
		return v.Locator, v.Locator != nil
	case TextData:
		if v.Value == "" {
			return nil, false
		}
		return blob.LocalLocator{Path: v.Value}, true
	case JSONData:
		loc, err := blob.ParseLocator(v.Raw)
		return loc, err == nil
	}
	return nil, false
}

func clonePayload(p Payload) Payload {
	if v, ok := p.(JSONData); ok {
		return JSONData{Raw: append(json.RawMessage(nil), v.Raw...)}
	}
	return p
}
