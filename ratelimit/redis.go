package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix prefixes every key written by RedisLimiter.
const DefaultRedisKeyPrefix = "securevault:ratelimit:"

// slidingWindow admits n requests if fewer than rate were recorded in the
// trailing window. Entries are scored by their time in microseconds.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local rate = tonumber(ARGV[3])
	local n = tonumber(ARGV[4])
	local window_ms = tonumber(ARGV[5])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count + n > rate then
		return 0
	end

	for i = 1, n do
		redis.call('ZADD', key, now + i - 1, now .. ':' .. i)
	end
	redis.call('PEXPIRE', key, window_ms)

	return 1
`)

// RedisLimiter is a sliding window limiter shared by every process using
// the same Redis.
type RedisLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	quota     Quota
}

// RedisConfig configures a RedisLimiter.
type RedisConfig struct {
	// Client is the Redis client to use. It is not closed by the limiter.
	Client redis.Cmdable

	// KeyPrefix defaults to DefaultRedisKeyPrefix.
	KeyPrefix string

	Requests int
	Window   time.Duration
}

// NewRedisLimiter creates a RedisLimiter.
func NewRedisLimiter(cfg *RedisConfig) (*RedisLimiter, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, fmt.Errorf("ratelimit: redis client is required")
	}
	if cfg.Requests < 1 || cfg.Window <= 0 {
		return nil, fmt.Errorf("ratelimit: invalid quota %d per %v", cfg.Requests, cfg.Window)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisLimiter{
		client:    cfg.Client,
		keyPrefix: prefix,
		quota:     Quota{Requests: cfg.Requests, Window: cfg.Window},
	}, nil
}

// Allow implements Limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return r.AllowN(ctx, key, 1)
}

// AllowN implements Limiter.
func (r *RedisLimiter) AllowN(ctx context.Context, key string, n int) (bool, error) {
	now := time.Now()
	result, err := slidingWindow.Run(ctx, r.client, []string{r.keyPrefix + key},
		now.Add(-r.quota.Window).UnixMicro(),
		now.UnixMicro(),
		r.quota.Requests,
		n,
		r.quota.Window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis rate limit script failed: %w", err)
	}
	return result == 1, nil
}

// RetryAfter implements RetryAfterer. It returns the full window since the
// oldest entry is not read back.
func (r *RedisLimiter) RetryAfter(string) time.Duration {
	return r.quota.Window
}

// Remaining returns the number of requests key may still make in the
// current window.
func (r *RedisLimiter) Remaining(ctx context.Context, key string) (int, error) {
	redisKey := r.keyPrefix + key
	windowStart := time.Now().Add(-r.quota.Window).UnixMicro()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart, 10))
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	remaining := r.quota.Requests - int(count.Val())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Reset implements Limiter.
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// Close implements Limiter. The client is owned by the caller.
func (r *RedisLimiter) Close() error {
	return nil
}

var (
	_ Limiter      = (*RedisLimiter)(nil)
	_ RetryAfterer = (*RedisLimiter)(nil)
)
