package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/token"
)

// UserResolver maps a session token to the user it was issued for.
type UserResolver interface {
	ResolveToken(ctx context.Context, token string) (*identity.User, error)
}

// PermissionChecker decides whether a role holds a permission.
// *rbac.Policy implements it.
type PermissionChecker interface {
	Can(role identity.Role, permission string) bool
}

var (
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotConfigured    = errors.New("permission checker is not configured")
)

// DirectoryResolver resolves tokens by asking Issuer for the subject and
// looking the subject up in Directory.
type DirectoryResolver struct {
	Issuer    token.Issuer
	Directory identity.Directory
}

// ResolveToken implements UserResolver.
func (d *DirectoryResolver) ResolveToken(ctx context.Context, tok string) (*identity.User, error) {
	id, err := d.Issuer.Subject(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	rec, err := d.Directory.FindByID(ctx, id)
	if err != nil {
		if identity.IsNotFound(err) {
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}
		return nil, err
	}
	u := rec.User
	return &u, nil
}

// Authenticate rejects requests without a token that resolver accepts.
// The resolved user and the token are stored in the request context.
func Authenticate(resolver UserResolver, cfg *Config) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skips(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tok := cfg.TokenExtractor(r)
			if tok == "" {
				cfg.ErrorHandler(w, r, ErrMissingToken)
				return
			}

			u, err := resolver.ResolveToken(r.Context(), tok)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx := WithToken(WithUser(r.Context(), u), tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate stores the user when a valid token is present and
// lets every request through.
func OptionalAuthenticate(resolver UserResolver, cfg *Config) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := cfg.TokenExtractor(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := resolver.ResolveToken(r.Context(), tok)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithToken(WithUser(r.Context(), u), tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission requires the authenticated user's role to hold permission.
func RequirePermission(checker PermissionChecker, permission string, cfg *Config) func(http.Handler) http.Handler {
	return require(checker, cfg, func(role identity.Role) bool {
		return checker.Can(role, permission)
	})
}

// RequireAllPermissions requires every permission.
func RequireAllPermissions(checker PermissionChecker, permissions []string, cfg *Config) func(http.Handler) http.Handler {
	return require(checker, cfg, func(role identity.Role) bool {
		for _, p := range permissions {
			if !checker.Can(role, p) {
				return false
			}
		}
		return true
	})
}

// RequireAnyPermission requires at least one of permissions.
func RequireAnyPermission(checker PermissionChecker, permissions []string, cfg *Config) func(http.Handler) http.Handler {
	return require(checker, cfg, func(role identity.Role) bool {
		for _, p := range permissions {
			if checker.Can(role, p) {
				return true
			}
		}
		return false
	})
}

// RequireRole requires the authenticated user to have one of roles.
func RequireRole(cfg *Config, roles ...identity.Role) func(http.Handler) http.Handler {
	return require(allowAll{}, cfg, func(role identity.Role) bool {
		for _, r := range roles {
			if r == role {
				return true
			}
		}
		return false
	})
}

type allowAll struct{}

func (allowAll) Can(identity.Role, string) bool { return true }

func require(checker PermissionChecker, cfg *Config, allowed func(identity.Role) bool) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil {
				cfg.ErrorHandler(w, r, ErrNotConfigured)
				return
			}

			u := UserFrom(r.Context())
			if u == nil {
				cfg.ErrorHandler(w, r, ErrMissingToken)
				return
			}

			if !allowed(u.Role) {
				cfg.ErrorHandler(w, r, ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
