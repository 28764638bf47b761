package requestlog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/mockserve/internal/id"
)

// DefaultMaxEntries is the capacity of a MemoryStore created with a
// non-positive size.
const DefaultMaxEntries = 1000

// MemoryStore keeps the most recent entries in memory, evicting the oldest
// once full.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
}

// NewMemoryStore creates a MemoryStore holding up to maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		entries:    make([]*Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Write stores e, assigning an ID and timestamp when missing.
func (s *MemoryStore) Write(_ context.Context, e *Entry) error {
	if e == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = id.ULID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) >= s.maxEntries {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, e)
	return nil
}

// List returns entries newest first.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter != nil {
			if filter.Method != "" && e.Method != filter.Method {
				continue
			}
			if filter.Path != "" && !strings.HasPrefix(e.Path, filter.Path) {
				continue
			}
		}
		result = append(result, e)
		if filter != nil && filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.entries = s.entries[:0]
}

var _ Store = (*MemoryStore)(nil)
