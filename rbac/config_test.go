package rbac

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aloks98/securevault/identity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, r := range identity.Roles() {
		if cfg.Template(r) == nil {
			t.Errorf("Template(%s) = nil", r)
		}
	}
	if p := cfg.Permission("users:manage"); p == nil || p.Name == "" {
		t.Errorf("Permission(users:manage) = %+v", p)
	}
	if cfg.Permission("nope:nope") != nil {
		t.Error("Permission() should return nil for unknown keys")
	}
}

func validConfig() *Config {
	return &Config{
		Version: 1,
		PermissionGroups: []PermissionGroup{{
			Name: "g",
			Permissions: []Permission{
				{Key: "tasks:view"},
				{Key: "tasks:accept"},
				{Key: "users:manage"},
			},
		}},
		RoleTemplates: []RoleTemplate{
			{Key: identity.RoleClient, Permissions: []string{"tasks:view"}},
			{Key: identity.RoleAdmin, Permissions: []string{"*"}},
			{Key: identity.RoleEthicalHacker, Permissions: []string{"tasks:*"}},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"empty permission key", func(c *Config) {
			c.PermissionGroups[0].Permissions = append(c.PermissionGroups[0].Permissions, Permission{})
		}, ErrEmptyPermissionKey},
		{"bad permission format", func(c *Config) {
			c.PermissionGroups[0].Permissions[0].Key = "tasks"
		}, ErrInvalidPermissionFormat},
		{"wildcard in catalogue", func(c *Config) {
			c.PermissionGroups[0].Permissions[0].Key = "tasks:*"
		}, ErrInvalidPermissionFormat},
		{"duplicate permission", func(c *Config) {
			c.PermissionGroups[0].Permissions[1].Key = "tasks:view"
		}, ErrDuplicatePermission},
		{"duplicate role", func(c *Config) {
			c.RoleTemplates[1].Key = identity.RoleClient
		}, ErrDuplicateRole},
		{"unknown role", func(c *Config) {
			c.RoleTemplates[0].Key = "root"
		}, ErrUnknownRole},
		{"missing role", func(c *Config) {
			c.RoleTemplates = c.RoleTemplates[:2]
		}, ErrMissingRole},
		{"undefined permission", func(c *Config) {
			c.RoleTemplates[0].Permissions = []string{"reports:view"}
		}, ErrRolePermissionNotFound},
		{"wildcard matching nothing", func(c *Config) {
			c.RoleTemplates[0].Permissions = []string{"reports:*"}
		}, ErrRolePermissionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Expand(t *testing.T) {
	cfg := validConfig()

	tests := []struct {
		grants []string
		want   []string
	}{
		{[]string{"*"}, []string{"tasks:view", "tasks:accept", "users:manage"}},
		{[]string{"tasks:*"}, []string{"tasks:view", "tasks:accept"}},
		{[]string{"*:manage"}, []string{"users:manage"}},
		{[]string{"tasks:view", "tasks:view"}, []string{"tasks:view"}},
		{nil, nil},
	}
	for _, tt := range tests {
		got := cfg.Expand(tt.grants)
		if len(got) != len(tt.want) {
			t.Errorf("Expand(%v) = %v, want %v", tt.grants, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Expand(%v) = %v, want %v", tt.grants, got, tt.want)
				break
			}
		}
	}
}

func TestLoadFromBytes(t *testing.T) {
	yamlData := []byte(`
version: 1
permission_groups:
  - name: g
    permissions:
      - key: tasks:view
        name: View
role_templates:
  - key: client
    permissions: [tasks:view]
  - key: admin
    permissions: ["*"]
  - key: ethical_hacker
    permissions: [tasks:view]
`)
	cfg, err := LoadFromBytes(yamlData, ".yaml")
	if err != nil {
		t.Fatalf("LoadFromBytes(yaml) error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	jsonData := []byte(`{"version":1,"permission_groups":[],"role_templates":[{"key":"admin","permissions":["*"]}]}`)
	cfg, err = LoadFromBytes(jsonData, ".json")
	if err != nil {
		t.Fatalf("LoadFromBytes(json) error = %v", err)
	}
	if cfg.Template(identity.RoleAdmin) == nil {
		t.Error("admin template missing")
	}

	if _, err := LoadFromBytes([]byte(`role_templates: [{key: root}]`), ".yml"); err == nil {
		t.Error("LoadFromBytes() should reject an unknown role key")
	}
	if _, err := LoadFromBytes([]byte("{"), ".json"); err == nil {
		t.Error("LoadFromBytes() should reject invalid JSON")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perms.yaml")
	if err := os.WriteFile(path, defaultConfig, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if len(cfg.RoleTemplates) != 3 {
		t.Errorf("templates = %d, want 3", len(cfg.RoleTemplates))
	}

	for _, bad := range []string{"", "../perms.yaml", filepath.Join(dir, "perms.txt")} {
		if _, err := LoadFromFile(bad); !errors.Is(err, ErrInvalidConfigPath) {
			t.Errorf("LoadFromFile(%q) error = %v, want ErrInvalidConfigPath", bad, err)
		}
	}
}
