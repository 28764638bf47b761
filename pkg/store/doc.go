// Package store groups the persistent storage.MockStore backends.
//
// Subpackages:
//
//   - file: a JSON file on disk, loaded at startup and saved in the background
//   - mongo: a MongoDB collection, which also backs the request log
//
// With neither configured the server keeps definitions in memory.
package store
