package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/getmockd/mockserve/internal/id"
	"github.com/getmockd/mockserve/pkg/mock"
)

// InMemoryMockStore is a thread-safe in-memory implementation of MockStore.
// It stores and returns copies, so callers can never mutate a stored record.
type InMemoryMockStore struct {
	mu    sync.RWMutex
	mocks map[mock.Key]*mock.Definition
}

// NewInMemoryMockStore creates a new InMemoryMockStore.
func NewInMemoryMockStore() *InMemoryMockStore {
	return &InMemoryMockStore{
		mocks: make(map[mock.Key]*mock.Definition),
	}
}

// Define creates or replaces the definition for d's route key.
func (s *InMemoryMockStore) Define(_ context.Context, d *mock.Definition) error {
	if d == nil {
		return nil
	}
	stored := d.Clone()
	stored.Normalize()
	key := stored.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.mocks[key]; ok {
		stored.ID = existing.ID
	} else if stored.ID == "" {
		stored.ID = id.ULID()
	}
	s.mocks[key] = stored
	return nil
}

// Patch updates the supplied fields of the definition stored under key.
func (s *InMemoryMockStore) Patch(_ context.Context, key mock.Key, p mock.Patch) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	key = mock.NormalizeKey(key.Method, key.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.mocks[key]
	if !ok {
		return ErrNotFound
	}
	updated := existing.Clone()
	p.Apply(updated)
	s.mocks[key] = updated
	return nil
}

// Lookup returns a copy of the definition stored under key.
func (s *InMemoryMockStore) Lookup(_ context.Context, key mock.Key) (*mock.Definition, error) {
	key = mock.NormalizeKey(key.Method, key.Path)

	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.mocks[key]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

// List returns copies of all definitions ordered by method then path.
func (s *InMemoryMockStore) List(_ context.Context) ([]*mock.Definition, error) {
	s.mu.RLock()
	result := make([]*mock.Definition, 0, len(s.mocks))
	for _, d := range s.mocks {
		result = append(result, d.Clone())
	}
	s.mu.RUnlock()

	SortDefinitions(result)
	return result, nil
}

// Count returns the number of stored definitions.
func (s *InMemoryMockStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mocks)
}

// Load replaces the store contents with defs. Later entries win when two
// share a route key. Used by persistent stores that keep an in-memory index.
func (s *InMemoryMockStore) Load(defs []*mock.Definition) {
	mocks := make(map[mock.Key]*mock.Definition, len(defs))
	for _, d := range defs {
		if d == nil {
			continue
		}
		c := d.Clone()
		c.Normalize()
		if c.ID == "" {
			c.ID = id.ULID()
		}
		mocks[c.Key()] = c
	}

	s.mu.Lock()
	s.mocks = mocks
	s.mu.Unlock()
}

// SortDefinitions orders defs by method then path.
func SortDefinitions(defs []*mock.Definition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Method != defs[j].Method {
			return defs[i].Method < defs[j].Method
		}
		return defs[i].Path < defs[j].Path
	})
}

// Ensure InMemoryMockStore implements MockStore.
// Reset removes all definitions.
func (s *InMemoryMockStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mocks = make(map[mock.Key]*mock.Definition)
}

var _ MockStore = (*InMemoryMockStore)(nil)
