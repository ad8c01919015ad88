// Package config loads the securevault command configuration from a YAML
// file, SECUREVAULT_* environment variables and a .env file, in increasing
// order of precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SECUREVAULT_STORE_DRIVER.
const EnvPrefix = "SECUREVAULT"

type Config struct {
	Profile  string         `mapstructure:"profile"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Store    StoreConfig    `mapstructure:"store"`
	Identity IdentityConfig `mapstructure:"identity"`
	Session  SessionConfig  `mapstructure:"session"`
	Server   ServerConfig   `mapstructure:"server"`
}

type LoggerConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// StoreConfig selects where the signed-in user is persisted.
type StoreConfig struct {
	// Driver is one of sqlite, postgres, mysql, redis, memory.
	Driver      string      `mapstructure:"driver"`
	DSN         string      `mapstructure:"dsn"`
	TablePrefix string      `mapstructure:"table_prefix"`
	Redis       RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IdentityConfig selects the identity service.
type IdentityConfig struct {
	// Mode is mock or remote.
	Mode       string        `mapstructure:"mode"`
	RemoteURL  string        `mapstructure:"remote_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`

	// SimulateLatency keeps the mock's demo delays.
	SimulateLatency bool `mapstructure:"simulate_latency"`

	// StrictCredentials verifies passwords of accounts created with a hash.
	StrictCredentials bool `mapstructure:"strict_credentials"`

	// PasswordHasher is none, argon2id or bcrypt.
	PasswordHasher string `mapstructure:"password_hasher"`
}

type SessionConfig struct {
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	TokenKey         string        `mapstructure:"token_key"`
	UserKey          string        `mapstructure:"user_key"`
}

type ServerConfig struct {
	Addr           string          `mapstructure:"addr"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	JWTSecret      string          `mapstructure:"jwt_secret"`
	JWTTTL         time.Duration   `mapstructure:"jwt_ttl"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// SetDefaults registers a default for every key so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("profile", "default")

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_paths", []string{})

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table_prefix", "securevault_")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)

	v.SetDefault("identity.mode", "mock")
	v.SetDefault("identity.remote_url", "http://localhost:8080")
	v.SetDefault("identity.timeout", "10s")
	v.SetDefault("identity.max_retries", 3)
	v.SetDefault("identity.simulate_latency", true)
	v.SetDefault("identity.strict_credentials", false)
	v.SetDefault("identity.password_hasher", "none")

	v.SetDefault("session.operation_timeout", "30s")
	v.SetDefault("session.token_key", "auth_token")
	v.SetDefault("session.user_key", "auth_user")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_ttl", "24h")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.backend", "memory")
	v.SetDefault("server.rate_limit.requests", 10)
	v.SetDefault("server.rate_limit.window", "1m")
}

// Dir returns the directory holding the config file and the default
// SQLite database.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".securevault"), nil
}

// Load reads the configuration into v. An empty path looks for
// config.yaml in Dir; a missing default file is not an error. Variables
// from ./.env are loaded first without overriding the environment.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfg.Store.DSN = filepath.Join(dir, "session.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	var errs []error

	if c.Profile == "" {
		errs = append(errs, errors.New("profile must not be empty"))
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format))
	}

	switch c.Store.Driver {
	case "memory", "redis":
	case "sqlite", "postgres", "mysql":
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for %s", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.driver %q", c.Store.Driver))
	}

	switch c.Identity.Mode {
	case "mock":
	case "remote":
		if c.Identity.RemoteURL == "" {
			errs = append(errs, errors.New("identity.remote_url is required in remote mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("identity.mode must be mock or remote, got %q", c.Identity.Mode))
	}
	switch c.Identity.PasswordHasher {
	case "none", "argon2", "argon2id", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("unsupported identity.password_hasher %q", c.Identity.PasswordHasher))
	}

	if c.Session.TokenKey == "" || c.Session.UserKey == "" || c.Session.TokenKey == c.Session.UserKey {
		errs = append(errs, errors.New("session.token_key and session.user_key must be distinct and non-empty"))
	}
	if c.Session.OperationTimeout < 0 {
		errs = append(errs, errors.New("session.operation_timeout must not be negative"))
	}

	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.Requests < 1 || rl.Window <= 0 {
			errs = append(errs, errors.New("server.rate_limit needs positive requests and window"))
		}
		if rl.Backend != "memory" && rl.Backend != "redis" {
			errs = append(errs, fmt.Errorf("server.rate_limit.backend must be memory or redis, got %q", rl.Backend))
		}
	}

	return errors.Join(errs...)
}
