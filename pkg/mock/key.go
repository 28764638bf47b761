package mock

import "strings"

// Key is the normalized (method, path) pair definitions are stored under.
type Key struct {
	Method string
	Path   string
}

// NormalizeKey upper-cases the method and makes the path start with exactly
// one slash. Surrounding whitespace is dropped from both. It is idempotent.
func NormalizeKey(method, path string) Key {
	return Key{
		Method: strings.ToUpper(strings.TrimSpace(method)),
		Path:   "/" + strings.TrimLeft(strings.TrimSpace(path), "/"),
	}
}

func (k Key) String() string {
	return k.Method + " " + k.Path
}
