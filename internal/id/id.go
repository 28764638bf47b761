package id

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Crockford's base32, which drops I, L, O and U.
const ulidEncoding = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const ulidLen = 26

var (
	mu      sync.Mutex
	lastMs  uint64
	lastRnd [10]byte
)

// ULID returns a new ULID.
func ULID() string {
	return newULID(uint64(time.Now().UnixMilli()))
}

func newULID(ms uint64) string {
	mu.Lock()
	var rnd [10]byte
	if ms == lastMs {
		rnd = lastRnd
		increment(&rnd)
	} else {
		_, _ = rand.Read(rnd[:])
		lastMs = ms
	}
	lastRnd = rnd
	mu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint16(b[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(b[2:6], uint32(ms))
	copy(b[6:], rnd[:])
	return encode(b)
}

// increment adds one to the big-endian random component. Overflow wraps,
// which after 2^80 IDs in one millisecond is not a practical concern.
func increment(r *[10]byte) {
	for i := len(r) - 1; i >= 0; i-- {
		r[i]++
		if r[i] != 0 {
			return
		}
	}
}

// encode writes 128 bits as 26 base32 characters. The first character
// carries only the top 3 bits.
func encode(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [ulidLen]byte
	for i := ulidLen - 1; i >= 0; i-- {
		out[i] = ulidEncoding[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// IsValidULID reports whether s is a well-formed ULID.
func IsValidULID(s string) bool {
	if len(s) != ulidLen || s[0] > '7' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(ulidEncoding, s[i]) < 0 {
			return false
		}
	}
	return true
}

// ULIDTime extracts the timestamp from a ULID.
func ULIDTime(s string) (time.Time, error) {
	if !IsValidULID(s) {
		return time.Time{}, fmt.Errorf("invalid ULID: %q", s)
	}
	var ms int64
	for i := 0; i < 10; i++ {
		ms = ms<<5 | int64(strings.IndexByte(ulidEncoding, s[i]))
	}
	return time.UnixMilli(ms), nil
}
