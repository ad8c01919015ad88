// Package testutil starts throwaway containers for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// image returns the image named by the environment variable env, or def
// when it is unset. CI pins images through these variables.
func image(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// terminate registers a cleanup that stops c when the test ends.
func terminate(t testing.TB, what string, c testcontainers.Container) {
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate %s container: %v", what, err)
		}
	})
}
