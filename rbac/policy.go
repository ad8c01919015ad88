package rbac

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/aloks98/securevault/identity"
)

// ErrPermissionDenied is returned by Policy.Require.
var ErrPermissionDenied = errors.New("permission denied")

// Policy answers permission checks for identity roles. It is immutable and
// safe for concurrent use.
type Policy struct {
	config *Config
	grants map[identity.Role][]string
	perms  map[identity.Role]map[string]bool
}

// NewPolicy validates cfg and builds a Policy from it.
func NewPolicy(cfg *Config) (*Policy, error) {
	if cfg == nil {
		return nil, errors.New("rbac: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Policy{
		config: cfg,
		grants: make(map[identity.Role][]string),
		perms:  make(map[identity.Role]map[string]bool),
	}
	for _, tpl := range cfg.RoleTemplates {
		p.grants[tpl.Key] = append([]string(nil), tpl.Permissions...)
		set := make(map[string]bool)
		for _, key := range cfg.Expand(tpl.Permissions) {
			set[key] = true
		}
		p.perms[tpl.Key] = set
	}
	return p, nil
}

// DefaultPolicy returns the Policy of the built-in templates.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("rbac: default policy: %v", err))
	}
	return p
}

// Config returns the underlying configuration.
func (p *Policy) Config() *Config {
	return p.config
}

// Can reports whether role holds permission. Permission may itself be a
// wildcard, in which case role must hold a grant covering it.
func (p *Policy) Can(role identity.Role, permission string) bool {
	if p.perms[role][permission] {
		return true
	}
	for _, g := range p.grants[role] {
		if matches(g, permission) {
			return true
		}
	}
	return false
}

// CanAll reports whether role holds every permission.
func (p *Policy) CanAll(role identity.Role, permissions ...string) bool {
	for _, perm := range permissions {
		if !p.Can(role, perm) {
			return false
		}
	}
	return true
}

// CanAny reports whether role holds at least one permission.
func (p *Policy) CanAny(role identity.Role, permissions ...string) bool {
	for _, perm := range permissions {
		if p.Can(role, perm) {
			return true
		}
	}
	return false
}

// Require returns ErrPermissionDenied unless role holds permission.
func (p *Policy) Require(role identity.Role, permission string) error {
	if !p.Can(role, permission) {
		return fmt.Errorf("%w: %s lacks %s", ErrPermissionDenied, role, permission)
	}
	return nil
}

// Permissions returns the concrete permission keys of role in catalogue
// order.
func (p *Policy) Permissions(role identity.Role) []string {
	return p.config.Expand(p.grants[role])
}

// Fingerprint returns a digest of the permissions of role. It changes
// whenever the template of role grants something different.
func (p *Policy) Fingerprint(role identity.Role) string {
	h := sha256.New()
	for _, key := range p.Permissions(role) {
		h.Write([]byte(key))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
