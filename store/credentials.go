package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aloks98/securevault/identity"
)

var (
	// ErrNoCredentials is returned by Load when neither entry is present.
	ErrNoCredentials = errors.New("no persisted credentials")

	// ErrIncomplete is returned by Load when only one of the two entries is present.
	ErrIncomplete = errors.New("persisted credentials are incomplete")

	// ErrCorrupt is returned when the persisted user cannot be decoded.
	ErrCorrupt = errors.New("persisted user is corrupt")
)

// Credentials reads and writes the token/user pair of a session.
type Credentials struct {
	store    Store
	tokenKey string
	userKey  string
}

// NewCredentials wraps s using the default keys.
func NewCredentials(s Store) *Credentials {
	return NewCredentialsWithKeys(s, KeyToken, KeyUser)
}

// NewCredentialsWithKeys wraps s using custom keys.
func NewCredentialsWithKeys(s Store, tokenKey, userKey string) *Credentials {
	return &Credentials{store: s, tokenKey: tokenKey, userKey: userKey}
}

// Keys returns the token and user keys.
func (c *Credentials) Keys() (tokenKey, userKey string) {
	return c.tokenKey, c.userKey
}

// SaveToken stores the session token.
func (c *Credentials) SaveToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, c.tokenKey, token)
}

// Token returns the session token, or "" when absent.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	v, _, err := c.store.Get(ctx, c.tokenKey)
	return v, err
}

// SaveUser stores u as JSON.
func (c *Credentials) SaveUser(ctx context.Context, u *identity.User) error {
	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.userKey, data)
}

// User returns the stored user, or nil when absent.
func (c *Credentials) User(ctx context.Context) (*identity.User, error) {
	v, ok, err := c.store.Get(ctx, c.userKey)
	if err != nil || !ok {
		return nil, err
	}
	return DecodeUser(v)
}

// Save stores both entries. If the second write fails the first is
// removed again, so a failed Save never leaves half a session behind.
func (c *Credentials) Save(ctx context.Context, token string, u *identity.User) error {
	if err := c.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := c.SaveToken(ctx, token); err != nil {
		_ = c.store.Delete(ctx, c.userKey)
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Load returns the persisted token and user. It fails with
// ErrNoCredentials, ErrIncomplete or ErrCorrupt when the pair is unusable.
func (c *Credentials) Load(ctx context.Context) (string, *identity.User, error) {
	token, hasToken, err := c.store.Get(ctx, c.tokenKey)
	if err != nil {
		return "", nil, err
	}
	raw, hasUser, err := c.store.Get(ctx, c.userKey)
	if err != nil {
		return "", nil, err
	}

	switch {
	case !hasToken && !hasUser:
		return "", nil, ErrNoCredentials
	case !hasToken || !hasUser || token == "":
		return "", nil, ErrIncomplete
	}

	u, err := DecodeUser(raw)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Clear removes both entries.
func (c *Credentials) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.tokenKey, c.userKey)
}

// EncodeUser serializes u in the persisted JSON form.
func EncodeUser(u *identity.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil user", ErrCorrupt)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUser parses the persisted JSON form of a user.
func DecodeUser(s string) (*identity.User, error) {
	var u identity.User
	if err := json.Unmarshal([]byte(s), &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if u.ID == "" || u.Email == "" {
		return nil, fmt.Errorf("%w: missing id or email", ErrCorrupt)
	}
	return &u, nil
}
