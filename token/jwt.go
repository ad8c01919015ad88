package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aloks98/securevault/internal/crypto"
)

// MinSecretLength is the minimum length of an HMAC signing secret.
const MinSecretLength = 32

// Config holds configuration for JWTIssuer.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string

	// SigningMethod is one of HS256, HS384, HS512. Defaults to HS256.
	SigningMethod string

	// TTL is the token lifetime. Zero issues tokens without an expiry.
	TTL time.Duration

	// Issuer is written to the iss claim when set.
	Issuer string

	// ClockSkew allows for clock differences between servers.
	ClockSkew time.Duration
}

// Claims represents the JWT claims structure.
type Claims struct {
	UserID string         `json:"sub"`
	JTI    string         `json:"jti"`
	Custom map[string]any `json:"custom,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer issues HMAC-signed JWTs.
type JWTIssuer struct {
	config *Config
	method jwt.SigningMethod
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. The secret must be at least
// MinSecretLength characters.
func NewJWTIssuer(cfg *Config) (*JWTIssuer, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token: secret must be at least %d characters", MinSecretLength)
	}

	var method jwt.SigningMethod
	switch cfg.SigningMethod {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("token: unsupported signing method %q", cfg.SigningMethod)
	}

	return &JWTIssuer{config: cfg, method: method, now: time.Now}, nil
}

// Issue implements Issuer.
func (s *JWTIssuer) Issue(userID string, custom map[string]any) (string, error) {
	if userID == "" {
		return "", ErrNoSubject
	}

	jti, err := crypto.NewID()
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := &Claims{
		UserID: userID,
		JTI:    jti,
		Custom: custom,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   s.config.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       jti,
		},
	}
	if s.config.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.config.TTL))
	}

	return jwt.NewWithClaims(s.method, claims).SignedString([]byte(s.config.Secret))
}

// Subject implements Issuer.
func (s *JWTIssuer) Subject(tokenString string) (string, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Parse validates a token and returns its claims.
func (s *JWTIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(s.config.ClockSkew),
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalidSig
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// mapJWTError translates jwt/v5 validation errors into this package's errors.
// Anything unrecognised is treated as malformed.
func mapJWTError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	if errors.Is(err, jwt.ErrTokenNotValidYet) {
		return ErrTokenNotYetValid
	}
	if errors.Is(err, jwt.ErrTokenMalformed) {
		return ErrTokenMalformed
	}
	if errors.Is(err, jwt.ErrTokenInvalidIssuer) {
		return ErrWrongIssuer
	}
	if errors.Is(err, jwt.ErrSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) {
		return ErrTokenInvalidSig
	}

	return ErrTokenMalformed
}

var _ Issuer = (*JWTIssuer)(nil)
