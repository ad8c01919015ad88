package identity

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role string

const (
	RoleClient        Role = "client"
	RoleAdmin         Role = "admin"
	RoleEthicalHacker Role = "ethical_hacker"
)

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleClient, RoleAdmin, RoleEthicalHacker}
}

// ParseRole converts a string into a Role. Hyphenated spellings
// ("ethical-hacker") are accepted as aliases.
func ParseRole(s string) (Role, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case string(RoleClient):
		return RoleClient, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleEthicalHacker):
		return RoleEthicalHacker, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleEthicalHacker:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Label returns the human-readable name of the role.
func (r Role) Label() string {
	return Dispatch[string](r, labels{})
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown roles are rejected.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleHandler has one method per role. Implementations must cover every
// role, so adding a role fails to compile until all handlers are updated.
type RoleHandler[T any] interface {
	Client() T
	Admin() T
	EthicalHacker() T
}

// Dispatch calls the handler method matching r. It panics on an invalid
// role; callers obtain roles through ParseRole or JSON decoding, both of
// which reject unknown values.
func Dispatch[T any](r Role, h RoleHandler[T]) T {
	switch r {
	case RoleClient:
		return h.Client()
	case RoleAdmin:
		return h.Admin()
	case RoleEthicalHacker:
		return h.EthicalHacker()
	}
	panic(fmt.Sprintf("identity: dispatch on invalid role %q", string(r)))
}

type labels struct{}

func (labels) Client() string        { return "Client" }
func (labels) Admin() string         { return "Administrator" }
func (labels) EthicalHacker() string { return "Ethical Hacker" }
