package middleware

import (
	"net/http"
	"strings"
)

// TokenExtractor returns the session token carried by r, or "".
type TokenExtractor func(r *http.Request) string

// FromHeader reads header. With a non-empty scheme the value must be
// "<scheme> <token>", the scheme matched case-insensitively.
func FromHeader(header, scheme string) TokenExtractor {
	return func(r *http.Request) string {
		v := r.Header.Get(header)
		if scheme == "" {
			return v
		}
		name, tok, ok := strings.Cut(v, " ")
		if !ok || !strings.EqualFold(name, scheme) {
			return ""
		}
		return strings.TrimSpace(tok)
	}
}

// FromCookie reads the cookie called name.
func FromCookie(name string) TokenExtractor {
	return func(r *http.Request) string {
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
		return ""
	}
}

// FirstOf tries extractors in order.
func FirstOf(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) string {
		for _, ex := range extractors {
			if tok := ex(r); tok != "" {
				return tok
			}
		}
		return ""
	}
}
