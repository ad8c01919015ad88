package middleware

import (
	"context"

	"github.com/aloks98/securevault/identity"
)

type (
	userCtxKey  struct{}
	tokenCtxKey struct{}
)

func WithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFrom returns the user Authenticate resolved, or nil.
func UserFrom(ctx context.Context) *identity.User {
	u, _ := ctx.Value(userCtxKey{}).(*identity.User)
	return u
}

func WithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, tok)
}

// TokenFrom returns the raw token Authenticate accepted, or "".
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenCtxKey{}).(string)
	return tok
}
