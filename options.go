package securevault

import (
	"time"

	"go.uber.org/zap"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/store"
)

// Option is a function that modifies the configuration.
type Option func(*Config)

// WithStore sets the storage for persisted credentials.
// This is a required option.
func WithStore(s store.Store) Option {
	return func(c *Config) {
		c.store = s
	}
}

// WithIdentity sets the identity service.
// This is a required option.
func WithIdentity(svc identity.Service) Option {
	return func(c *Config) {
		c.identity = svc
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithKeys overrides the storage keys of the token and the user.
func WithKeys(tokenKey, userKey string) Option {
	return func(c *Config) {
		c.TokenKey = tokenKey
		c.UserKey = userKey
	}
}

// WithOperationTimeout bounds each identity service call.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.OperationTimeout = d
	}
}

// WithDeduplication enables or disables coalescing of identical
// concurrent Login and Signup calls.
func WithDeduplication(enabled bool) Option {
	return func(c *Config) {
		c.Deduplicate = enabled
	}
}

// WithAutoMigrate enables or disables schema migration on New.
func WithAutoMigrate(enabled bool) Option {
	return func(c *Config) {
		c.AutoMigrate = enabled
	}
}
