package crypto

import (
	"encoding/hex"
	"testing"
)

func TestRandomBytes(t *testing.T) {
	for _, n := range []int{0, 16, 64} {
		b, err := RandomBytes(n)
		if err != nil {
			t.Fatalf("RandomBytes(%d) error = %v", n, err)
		}
		if len(b) != n {
			t.Errorf("RandomBytes(%d) returned %d bytes", n, len(b))
		}
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if raw, err := hex.DecodeString(id); err != nil || len(raw) != 16 {
			t.Fatalf("NewID() = %q, want 32 hex characters", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("NewID() repeated %q", id)
		}
		seen[id] = struct{}{}
	}
}
