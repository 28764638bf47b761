// Package blob stores and serves the opaque byte payloads behind file mocks.
//
// Uploaded files land either on local disk or in an S3-compatible bucket.
// Storage hides that choice from callers:
//
//   - Ingest writes to the remote backend when one is configured and falls back
//     to local disk when the upload fails. The returned Locator names whichever
//     backend actually holds the bytes.
//   - Retrieve turns a Locator back into an Outcome: a redirect to a public URL
//     (CDN domain or bucket base URL), a byte stream, NotFound or ReadFailure.
//
// Stored names are "<uuid>_<original name>" so concurrent uploads of the same
// file never collide while the suffix stays human readable.
//
// Storage does not track the lifecycle of what it stores. Files whose owning
// mock definition was overwritten are never reclaimed.
package blob
