package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aloks98/securevault/store"
)

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New() returned nil")
	}
	defer s.Close()
}

func TestStore_PingAndClose(t *testing.T) {
	s := New()

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Ping(context.Background()); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}
}

func TestStore_Migrate(t *testing.T) {
	s := New()
	defer s.Close()

	if err := s.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, store.KeyToken); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	if err := s.Set(ctx, store.KeyToken, "mock-jwt-token-1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := s.Get(ctx, store.KeyToken)
	if err != nil || !ok || v != "mock-jwt-token-1" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}

	if err := s.Set(ctx, store.KeyToken, "mock-jwt-token-2"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if v, _, _ := s.Get(ctx, store.KeyToken); v != "mock-jwt-token-2" {
		t.Errorf("Get() after overwrite = %q", v)
	}

	if err := s.Delete(ctx, store.KeyToken, store.KeyUser); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if err := s.Delete(ctx, store.KeyToken); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestStore_Closed(t *testing.T) {
	s := New()
	_ = s.Close()
	ctx := context.Background()

	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Get() error = %v, want ErrClosed", err)
	}
	if err := s.Set(ctx, "k", "v"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Set() error = %v, want ErrClosed", err)
	}
	if err := s.Delete(ctx, "k"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Delete() error = %v, want ErrClosed", err)
	}
}
