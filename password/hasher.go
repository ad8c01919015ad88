// Package password hashes account passwords.
//
// Hashing is opt-in: the mock identity service stores no hash unless a
// Hasher is configured, and only verifies one in strict mode.
package password

import (
	"errors"
	"fmt"
	"strings"
)

// Hasher defines the interface for password hashing algorithms.
type Hasher interface {
	// Hash creates a hash from a password.
	Hash(password string) (string, error)

	// Verify checks if a password matches a hash.
	Verify(password, hash string) (bool, error)

	// NeedsRehash reports whether hash was produced with other parameters.
	NeedsRehash(hash string) bool
}

// Algorithm names accepted by New.
const (
	AlgorithmNone     = "none"
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	// ErrUnknownAlgorithm is returned by New for an unsupported algorithm.
	ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")

	// ErrInvalidHash is returned when a stored hash cannot be parsed.
	ErrInvalidHash = errors.New("invalid password hash")

	// ErrPasswordTooLong is returned by bcrypt for passwords over 72 bytes.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// New returns the Hasher for algorithm with default parameters. "none"
// and the empty string return a nil Hasher.
func New(algorithm string) (Hasher, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmNone:
		return nil, nil
	case AlgorithmBcrypt:
		return NewBcryptHasher(nil), nil
	case AlgorithmArgon2id, "argon2":
		return NewArgon2Hasher(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// Verify checks password against hash, choosing the algorithm from the
// hash encoding. It accepts both bcrypt and argon2id hashes.
func Verify(password, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return NewArgon2Hasher(nil).Verify(password, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return NewBcryptHasher(nil).Verify(password, hash)
	default:
		return false, ErrInvalidHash
	}
}
