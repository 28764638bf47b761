package storage

import (
	"context"
	"errors"

	"github.com/getmockd/mockserve/pkg/mock"
)

// ErrNotFound is returned when no definition exists for a route key.
var ErrNotFound = errors.New("mock definition not found")

// ErrEmptyPatch is returned when a patch carries no fields.
var ErrEmptyPatch = errors.New("patch has no fields to update")

// MockStore stores mock definitions keyed by normalized route key.
type MockStore interface {
	// Define creates or wholly replaces the definition for d's route key.
	// The stored record keeps its ID across replacements.
	Define(ctx context.Context, d *mock.Definition) error

	// Patch updates the supplied fields of an existing definition.
	// Returns ErrNotFound if none matches and ErrEmptyPatch if p is empty.
	Patch(ctx context.Context, key mock.Key, p mock.Patch) error

	// Lookup returns the definition stored under key, or ErrNotFound.
	Lookup(ctx context.Context, key mock.Key) (*mock.Definition, error)

	// List returns all definitions ordered by method then path.
	List(ctx context.Context) ([]*mock.Definition, error)
}
