package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past this many bytes.
const bcryptMaxInput = 72

// BcryptConfig tunes BcryptHasher.
type BcryptConfig struct {
	// Cost is clamped to [bcrypt.MinCost, bcrypt.MaxCost].
	Cost int
}

// DefaultBcryptConfig uses bcrypt.DefaultCost.
func DefaultBcryptConfig() *BcryptConfig {
	return &BcryptConfig{Cost: bcrypt.DefaultCost}
}

// BcryptHasher stores passwords as $2a$ bcrypt hashes.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a BcryptHasher. cfg may be nil.
func NewBcryptHasher(cfg *BcryptConfig) *BcryptHasher {
	if cfg == nil {
		cfg = DefaultBcryptConfig()
	}
	return &BcryptHasher{cost: min(max(cfg.Cost, bcrypt.MinCost), bcrypt.MaxCost)}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > bcryptMaxInput {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify returns (false, nil) on a wrong password and ErrInvalidHash when
// hash is not a bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", ErrInvalidHash, err)
}

// NeedsRehash reports hashes made with a different cost, or unreadable ones.
func (h *BcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

var _ Hasher = (*BcryptHasher)(nil)
