// Package storage defines the MockStore contract for mock definitions and
// its in-memory implementation.
//
// Definitions are keyed by their normalized route key (see mock.NormalizeKey):
//
//   - Define replaces the whole record for a key, creating it if absent.
//   - Patch updates selected fields of an existing record and never creates.
//   - Lookup is an exact match on the key.
//
// Writes are last-writer-wins. Every call is atomic from the caller's point
// of view: a concurrent Lookup sees either the old or the new record, never a
// mix. InMemoryMockStore is the default backend; persistent implementations
// live under pkg/store.
package storage
