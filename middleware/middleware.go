// Package middleware provides net/http middleware that resolves bearer
// tokens to SecureVault users and enforces role permissions.
package middleware

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/rbac"
	"github.com/aloks98/securevault/token"
)

// ErrorHandler writes the response for a request the middleware refused.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Config is shared by every middleware in this package. The zero value
// reads a Bearer token from Authorization and answers with PlainError.
type Config struct {
	TokenExtractor TokenExtractor
	ErrorHandler   ErrorHandler

	// SkipPaths bypass Authenticate. "*" stands for one path segment and
	// a trailing "/*" for any number of them.
	SkipPaths []string
}

// DefaultConfig returns the zero Config with its defaults filled in.
func DefaultConfig() *Config {
	return (*Config)(nil).withDefaults()
}

func (c *Config) withDefaults() *Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.TokenExtractor == nil {
		out.TokenExtractor = FromHeader("Authorization", "Bearer")
	}
	if out.ErrorHandler == nil {
		out.ErrorHandler = PlainError
	}
	return &out
}

func (c *Config) skips(p string) bool {
	for _, pattern := range c.SkipPaths {
		if matchPath(pattern, p) {
			return true
		}
	}
	return false
}

func matchPath(pattern, p string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

// PlainError answers with the status text of StatusFor(err).
func PlainError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	http.Error(w, http.StatusText(code), code)
}

// StatusFor maps the errors this package and its collaborators return to
// an HTTP status.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, rbac.ErrPermissionDenied) {
		return http.StatusForbidden
	}
	if errors.Is(err, identity.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	unauthorized := errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		token.IsTokenError(err) ||
		identity.IsNotFound(err)
	if unauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
