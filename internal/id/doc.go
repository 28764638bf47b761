// Package id generates identifiers for stored records.
//
// ULIDs are 26-character, lexicographically sortable identifiers: 48 bits of
// millisecond timestamp followed by 80 bits of randomness, encoded with
// Crockford's base32. IDs generated within the same millisecond by this
// process are strictly increasing.
package id
