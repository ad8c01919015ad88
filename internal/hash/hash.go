// Package hash derives opaque keys from identifying input.
package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Key returns the hex SHA-256 of parts joined by NUL bytes, so raw emails
// and client addresses never appear in shared key spaces. Joining with NUL
// keeps ("ab", "c") and ("a", "bc") apart.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equal compares a and b in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
