// Package store defines the key-value storage that persists a signed-in
// session between runs.
//
// A session is two independent string entries: the opaque token under
// KeyToken and the JSON-encoded user under KeyUser. Entries never expire.
package store

import (
	"context"
	"errors"
)

// Default keys of the persisted credentials.
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is a string key-value store. All methods should be safe for
// concurrent use.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources held by the store.
	Close() error

	// Ping verifies the store connection is alive.
	Ping(ctx context.Context) error

	// Migrate creates or updates the backing schema.
	Migrate(ctx context.Context) error
}
