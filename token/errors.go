package token

import "errors"

var (
	ErrTokenExpired     = errors.New("token: expired")
	ErrTokenNotYetValid = errors.New("token: used before its issue time")
	ErrTokenMalformed   = errors.New("token: malformed")
	ErrTokenInvalidSig  = errors.New("token: bad signature")

	// ErrWrongIssuer is returned when the iss claim names another issuer.
	ErrWrongIssuer = errors.New("token: unexpected issuer")

	// ErrNoSubject is returned by Issue for an empty user ID.
	ErrNoSubject = errors.New("token: empty subject")
)

// rejections are the errors a parser returns for a token it refuses.
var rejections = []error{
	ErrTokenExpired,
	ErrTokenNotYetValid,
	ErrTokenMalformed,
	ErrTokenInvalidSig,
	ErrWrongIssuer,
}

// IsTokenError reports whether err means a presented token was rejected.
// ErrNoSubject is a caller mistake and does not count.
func IsTokenError(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
