// Package token issues and resolves the opaque session tokens handed to
// signed-in users.
package token

import (
	"strings"
)

// Issuer creates tokens for users and maps tokens back to user IDs.
type Issuer interface {
	// Issue returns a token for userID. claims may be nil.
	Issue(userID string, claims map[string]any) (string, error)

	// Subject returns the user ID a token was issued for.
	Subject(token string) (string, error)
}

// MockPrefix is the prefix of tokens produced by MockIssuer.
const MockPrefix = "mock-jwt-token-"

// MockIssuer produces deterministic, unsigned tokens of the form
// "mock-jwt-token-<id>". They carry no integrity protection.
type MockIssuer struct{}

// NewMockIssuer returns a MockIssuer.
func NewMockIssuer() MockIssuer {
	return MockIssuer{}
}

// Issue implements Issuer. claims are ignored.
func (MockIssuer) Issue(userID string, _ map[string]any) (string, error) {
	if userID == "" {
		return "", ErrNoSubject
	}
	return MockPrefix + userID, nil
}

// Subject implements Issuer.
func (MockIssuer) Subject(token string) (string, error) {
	id, ok := strings.CutPrefix(token, MockPrefix)
	if !ok || id == "" {
		return "", ErrTokenMalformed
	}
	return id, nil
}

var _ Issuer = MockIssuer{}
