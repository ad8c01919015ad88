package securevault

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/store"
)

// Default configuration values.
const (
	DefaultTokenKey         = store.KeyToken
	DefaultUserKey          = store.KeyUser
	DefaultOperationTimeout = 30 * time.Second
)

// Config holds all configuration for a Session.
type Config struct {
	// TokenKey is the storage key of the session token.
	TokenKey string

	// UserKey is the storage key of the serialized user.
	UserKey string

	// OperationTimeout bounds each identity service call.
	// Zero leaves calls bounded only by the caller's context.
	OperationTimeout time.Duration

	// Deduplicate coalesces identical concurrent Login and Signup calls
	// into a single identity service request.
	Deduplicate bool

	// AutoMigrate runs Store.Migrate when the session is created.
	AutoMigrate bool

	store    store.Store
	identity identity.Service
	logger   *zap.Logger
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		TokenKey:         DefaultTokenKey,
		UserKey:          DefaultUserKey,
		OperationTimeout: DefaultOperationTimeout,
		Deduplicate:      true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TokenKey == "" || c.UserKey == "" {
		return fmt.Errorf("%w: storage keys cannot be empty", ErrConfigInvalid)
	}
	if c.TokenKey == c.UserKey {
		return fmt.Errorf("%w: token and user keys must differ", ErrConfigInvalid)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("%w: operation timeout cannot be negative", ErrConfigInvalid)
	}
	return nil
}
