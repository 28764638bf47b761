// Package mock defines mock route definitions: the route key they are stored
// under, the response they produce and the partial updates they accept.
package mock

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultStatusCode is used when a definition does not specify a status code.
const DefaultStatusCode = 200

// ResponseType selects how a definition's payload is written to the client.
type ResponseType string

const (
	ResponseJSON ResponseType = "json"
	ResponseText ResponseType = "text"
	ResponseFile ResponseType = "file"
)

// ParseResponseType parses a response type case-insensitively.
func ParseResponseType(s string) (ResponseType, error) {
	switch t := ResponseType(strings.ToLower(strings.TrimSpace(s))); t {
	case ResponseJSON, ResponseText, ResponseFile:
		return t, nil
	default:
		return "", fmt.Errorf("unknown response type %q (want json, text or file)", s)
	}
}

// UnmarshalJSON accepts any casing of a known response type.
func (t *ResponseType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("response type must be a string: %w", err)
	}
	parsed, err := ParseResponseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Definition maps a route key to a canned response.
type Definition struct {
	// ID is assigned by the store. Empty until persisted.
	ID string

	Method string
	Path   string

	// StatusCode is the status written for json, text and streamed file
	// responses.
	StatusCode int

	ResponseType ResponseType

	// Data is the response payload. Its concrete type usually follows
	// ResponseType but does not have to: a patch may change one without the
	// other.
	Data Payload
}

// Key returns the normalized route key of the definition.
func (d *Definition) Key() Key {
	return NormalizeKey(d.Method, d.Path)
}

// Normalize rewrites Method and Path to their normalized form and applies
// the default status code.
func (d *Definition) Normalize() {
	k := d.Key()
	d.Method, d.Path = k.Method, k.Path
	if d.StatusCode == 0 {
		d.StatusCode = DefaultStatusCode
	}
}

// Status returns the status code to serve. Codes outside 100-999 are served
// as 200.
func (d *Definition) Status() int {
	if d.StatusCode < 100 || d.StatusCode > 999 {
		return DefaultStatusCode
	}
	return d.StatusCode
}

// Clone returns a copy that shares no mutable state with d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	c := *d
	c.Data = clonePayload(d.Data)
	return &c
}

// wireDefinition is the persisted and API form of a Definition.
type wireDefinition struct {
	ID           string          `json:"id,omitempty"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	StatusCode   int             `json:"http_status_code"`
	ResponseType ResponseType    `json:"response_type"`
	ResponseData json.RawMessage `json:"response_data"`
}

// MarshalJSON writes the definition with response_data in its canonical form.
func (d Definition) MarshalJSON() ([]byte, error) {
	raw, err := EncodePayload(d.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireDefinition{
		ID:           d.ID,
		Method:       d.Method,
		Path:         d.Path,
		StatusCode:   d.StatusCode,
		ResponseType: d.ResponseType,
		ResponseData: raw,
	})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var w wireDefinition
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	payload, err := DecodePayload(w.ResponseType, w.ResponseData)
	if err != nil {
		return err
	}
	*d = Definition{
		ID:           w.ID,
		Method:       w.Method,
		Path:         w.Path,
		StatusCode:   w.StatusCode,
		ResponseType: w.ResponseType,
		Data:         payload,
	}
	if d.StatusCode == 0 {
		d.StatusCode = DefaultStatusCode
	}
	return nil
}

// Patch is a partial update of an existing definition. Nil fields are left
// untouched.
type Patch struct {
	StatusCode   *int
	ResponseType *ResponseType
	Data         Payload
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.StatusCode == nil && p.ResponseType == nil && p.Data == nil
}

// Apply writes the supplied fields onto d.
func (p Patch) Apply(d *Definition) {
	if p.StatusCode != nil {
		d.StatusCode = *p.StatusCode
	}
	if p.ResponseType != nil {
		d.ResponseType = *p.ResponseType
	}
	if p.Data != nil {
		d.Data = clonePayload(p.Data)
	}
}
