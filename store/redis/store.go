// Package redis provides Redis storage for persisted sessions.
package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/aloks98/securevault/store"
)

// DefaultKeyPrefix is prepended to every key.
const DefaultKeyPrefix = "securevault:"

// Store implements store.Store using Redis. Keys are written without a
// TTL; sessions persist until explicitly deleted.
type Store struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// Config holds Redis store configuration.
type Config struct {
	// Client is an existing Redis client.
	// If provided, connection options are ignored and Close leaves it open.
	Client redis.UniversalClient

	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the Redis password.
	Password string

	// DB is the Redis database number.
	DB int

	// PoolSize is the maximum number of connections.
	PoolSize int

	// KeyPrefix defaults to DefaultKeyPrefix.
	KeyPrefix string

	// Namespace separates sessions sharing one Redis, such as CLI profiles.
	Namespace string
}

// New creates a new Redis store.
func New(cfg *Config) (*Store, error) {
	if cfg.Client == nil && cfg.Addr == "" {
		return nil, errors.New("redis store: address or client is required")
	}

	s := &Store{client: cfg.Client}
	if s.client == nil {
		opts := &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
		if cfg.PoolSize > 0 {
			opts.PoolSize = cfg.PoolSize
		}
		s.client = redis.NewClient(opts)
		s.owned = true
	}

	s.prefix = cfg.KeyPrefix
	if s.prefix == "" {
		s.prefix = DefaultKeyPrefix
	}
	if cfg.Namespace != "" {
		s.prefix += strings.Trim(cfg.Namespace, ":") + ":"
	}

	return s, nil
}

// Client returns the underlying Redis client.
func (s *Store) Client() redis.UniversalClient {
	return s.client
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}

// Close closes the Redis connection if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Migrate is a no-op for Redis as it doesn't require schema migration.
func (s *Store) Migrate(ctx context.Context) error {
	return nil
}

var _ store.Store = (*Store)(nil)
