package testutil

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// SetupRedis runs a disposable Redis server and returns a client connected
// to it. SECUREVAULT_TEST_REDIS_IMAGE overrides the image.
func SetupRedis(t testing.TB) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := redis.Run(ctx, image("SECUREVAULT_TEST_REDIS_IMAGE", redisImage))
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	terminate(t, "redis", c)

	uri, err := c.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis URI: %v", err)
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis URI %q: %v", uri, err)
	}

	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	return client
}
