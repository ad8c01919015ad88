// Package crypto wraps crypto/rand for salts and token IDs.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// NewID returns 128 random bits as 32 lowercase hex characters.
func NewID() (string, error) {
	b, err := RandomBytes(16)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
