// Package rbac maps identity roles to permissions.
//
// Permissions are "resource:action" keys grouped for display. A role
// template grants a list of keys, where "resource:*" grants every action on
// a resource, "*:action" grants an action on every resource and "*" grants
// everything. The built-in templates are embedded; a custom file can be
// loaded with LoadFromFile.
package rbac

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aloks98/securevault/identity"
)

//go:embed permissions.yaml
var defaultConfig []byte

// Config is the permission catalogue and the role templates.
type Config struct {
	Version          int               `json:"version" yaml:"version"`
	PermissionGroups []PermissionGroup `json:"permission_groups" yaml:"permission_groups"`
	RoleTemplates    []RoleTemplate    `json:"role_templates" yaml:"role_templates"`
}

// PermissionGroup groups related permissions together.
type PermissionGroup struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
}

// Permission defines a single permission.
type Permission struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// RoleTemplate is the permission set of one identity role.
type RoleTemplate struct {
	Key         identity.Role `json:"key" yaml:"key"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Permissions []string      `json:"permissions" yaml:"permissions"`
}

// Validation errors.
var (
	ErrEmptyPermissionKey      = errors.New("permission key cannot be empty")
	ErrInvalidPermissionFormat = errors.New("invalid permission format")
	ErrDuplicatePermission     = errors.New("duplicate permission key")
	ErrDuplicateRole           = errors.New("duplicate role key")
	ErrUnknownRole             = errors.New("role template for unknown role")
	ErrMissingRole             = errors.New("role has no template")
	ErrRolePermissionNotFound  = errors.New("role references undefined permission")
	ErrInvalidConfigPath       = errors.New("invalid config file path")
)

// DefaultConfig returns the built-in templates.
func DefaultConfig() *Config {
	cfg, err := LoadFromBytes(defaultConfig, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("rbac: embedded permissions: %v", err))
	}
	return cfg
}

// LoadFromFile loads a configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data, filepath.Ext(path))
}

func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidConfigPath)
	}
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("%w: path contains directory traversal", ErrInvalidConfigPath)
	}
	switch strings.ToLower(filepath.Ext(clean)) {
	case ".yaml", ".yml", ".json":
		return nil
	default:
		return fmt.Errorf("%w: path must have .yaml, .yml, or .json extension", ErrInvalidConfigPath)
	}
}

// LoadFromBytes parses a configuration. ext selects JSON for ".json";
// anything else is read as YAML.
func LoadFromBytes(data []byte, ext string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the permission keys, the references of every template
// and that each identity role has exactly one template.
func (c *Config) Validate() error {
	known := make(map[string]bool)
	for _, group := range c.PermissionGroups {
		for _, perm := range group.Permissions {
			if err := validatePermissionKey(perm.Key); err != nil {
				return err
			}
			if strings.Contains(perm.Key, "*") {
				return fmt.Errorf("%w: %s (wildcards are only allowed in templates)", ErrInvalidPermissionFormat, perm.Key)
			}
			if known[perm.Key] {
				return fmt.Errorf("%w: %s", ErrDuplicatePermission, perm.Key)
			}
			known[perm.Key] = true
		}
	}

	seen := make(map[identity.Role]bool)
	for _, role := range c.RoleTemplates {
		if !role.Key.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownRole, role.Key)
		}
		if seen[role.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateRole, role.Key)
		}
		seen[role.Key] = true

		for _, ref := range role.Permissions {
			if !resolves(ref, known) {
				return fmt.Errorf("%w: role %q references %q", ErrRolePermissionNotFound, role.Key, ref)
			}
		}
	}

	for _, r := range identity.Roles() {
		if !seen[r] {
			return fmt.Errorf("%w: %s", ErrMissingRole, r)
		}
	}
	return nil
}

func validatePermissionKey(key string) error {
	if key == "" {
		return ErrEmptyPermissionKey
	}
	if key == "*" {
		return nil
	}
	resource, action, ok := strings.Cut(key, ":")
	if !ok || strings.Contains(action, ":") {
		return fmt.Errorf("%w: %s (expected resource:action)", ErrInvalidPermissionFormat, key)
	}
	if resource == "" || action == "" {
		return fmt.Errorf("%w: %s (resource and action cannot be empty)", ErrInvalidPermissionFormat, key)
	}
	return nil
}

// resolves reports whether ref names a known permission or is a wildcard
// matching at least one.
func resolves(ref string, known map[string]bool) bool {
	if ref == "*" || known[ref] {
		return true
	}
	if validatePermissionKey(ref) != nil || !strings.Contains(ref, "*") {
		return false
	}
	for key := range known {
		if matches(ref, key) {
			return true
		}
	}
	return false
}

// matches reports whether the granted pattern covers the permission key.
func matches(pattern, key string) bool {
	if pattern == "*" || pattern == key {
		return true
	}
	pr, pa, ok := strings.Cut(pattern, ":")
	if !ok {
		return false
	}
	kr, ka, ok := strings.Cut(key, ":")
	if !ok {
		return false
	}
	return (pr == "*" || pr == kr) && (pa == "*" || pa == ka)
}

// AllPermissions returns every permission key in catalogue order.
func (c *Config) AllPermissions() []string {
	var perms []string
	for _, group := range c.PermissionGroups {
		for _, perm := range group.Permissions {
			perms = append(perms, perm.Key)
		}
	}
	return perms
}

// Template returns the template of role, or nil.
func (c *Config) Template(role identity.Role) *RoleTemplate {
	for i := range c.RoleTemplates {
		if c.RoleTemplates[i].Key == role {
			return &c.RoleTemplates[i]
		}
	}
	return nil
}

// Permission returns a permission by key, or nil.
func (c *Config) Permission(key string) *Permission {
	for _, group := range c.PermissionGroups {
		for i := range group.Permissions {
			if group.Permissions[i].Key == key {
				return &group.Permissions[i]
			}
		}
	}
	return nil
}

// Expand resolves wildcard grants to the concrete catalogue keys they
// cover, in catalogue order.
func (c *Config) Expand(grants []string) []string {
	var out []string
	for _, key := range c.AllPermissions() {
		for _, g := range grants {
			if matches(g, key) {
				out = append(out, key)
				break
			}
		}
	}
	return out
}
