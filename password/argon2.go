package password

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/aloks98/securevault/internal/crypto"
	"github.com/aloks98/securevault/internal/hash"
)

// Argon2Config holds the configuration for Argon2id hashing.
type Argon2Config struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Config returns the default Argon2id parameters (64 MiB, t=3, p=2).
func DefaultArgon2Config() *Argon2Config {
	return &Argon2Config{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2Hasher implements Hasher using Argon2id. Hashes are encoded in
// PHC string format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
type Argon2Hasher struct {
	config Argon2Config
}

// NewArgon2Hasher creates an Argon2id hasher. A nil config uses DefaultArgon2Config.
func NewArgon2Hasher(config *Argon2Config) *Argon2Hasher {
	if config == nil {
		config = DefaultArgon2Config()
	}
	return &Argon2Hasher{config: *config}
}

// Hash implements Hasher.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt, err := crypto.RandomBytes(int(h.config.SaltLength))
	if err != nil {
		return "", err
	}
	key := h.config.derive(password, salt)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.config.Memory, h.config.Iterations, h.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify implements Hasher. Parameters are read from the encoded hash.
func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := parseArgon2(encoded)
	if err != nil {
		return false, err
	}
	return hash.Equal(key, params.derive(password, salt)), nil
}

// NeedsRehash implements Hasher.
func (h *Argon2Hasher) NeedsRehash(encoded string) bool {
	params, _, _, err := parseArgon2(encoded)
	if err != nil {
		return true
	}
	return params.Memory != h.config.Memory ||
		params.Iterations != h.config.Iterations ||
		params.Parallelism != h.config.Parallelism ||
		params.KeyLength != h.config.KeyLength
}

func (c *Argon2Config) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, c.Iterations, c.Memory, c.Parallelism, c.KeyLength)
}

func parseArgon2(encoded string) (*Argon2Config, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("%w: version %q", ErrInvalidHash, parts[2])
	}

	params := &Argon2Config{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}
	params.SaltLength = uint32(len(salt)) //nolint:gosec // bounded by decode
	params.KeyLength = uint32(len(key))   //nolint:gosec // bounded by decode

	return params, salt, key, nil
}

var _ Hasher = (*Argon2Hasher)(nil)
