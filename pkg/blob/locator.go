package blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
)

// Locator references stored file bytes. It is either a LocalLocator or a
// RemoteLocator.
type Locator interface {
	locator()
	// Filename is the name a client should see when downloading the file.
	Filename() string
}

// LocalLocator points at a file on the local filesystem.
type LocalLocator struct {
	Path string
}

func (LocalLocator) locator() {}

// Filename returns the base name of the file.
func (l LocalLocator) Filename() string {
	return baseOr(filepath.Base(l.Path))
}

// RemoteLocator points at an object in a bucket.
type RemoteLocator struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (RemoteLocator) locator() {}

// Filename returns the last path segment of the object key.
func (r RemoteLocator) Filename() string {
	return baseOr(path.Base(r.Key))
}

func baseOr(name string) string {
	switch name {
	case "", ".", "/", `\`:
		return "download"
	}
	return name
}

// ErrInvalidLocator is returned when a JSON value cannot be read as a locator.
var ErrInvalidLocator = errors.New("invalid file locator")

// MarshalLocator returns the persisted JSON form of a locator: a path string
// for local files and a {"bucket","key"} object for remote objects.
func MarshalLocator(l Locator) (json.RawMessage, error) {
	switch v := l.(type) {
	case LocalLocator:
		return json.Marshal(v.Path)
	case RemoteLocator:
		return json.Marshal(v)
	case nil:
		return nil, ErrInvalidLocator
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidLocator, l)
	}
}

// ParseLocator reads the JSON form written by MarshalLocator.
func ParseLocator(raw json.RawMessage) (Locator, error) {
	var p string
	if err := json.Unmarshal(raw, &p); err == nil {
		if p == "" {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidLocator)
		}
		return LocalLocator{Path: p}, nil
	}
	var r RemoteLocator
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	if r.Bucket == "" || r.Key == "" {
		return nil, fmt.Errorf("%w: bucket and key are required", ErrInvalidLocator)
	}
	return r, nil
}
