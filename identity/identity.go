// Package identity defines the account model and the contract of the
// identity service that authenticates and registers users.
//
// Two implementations ship with the module: identity/mock, a seeded
// in-process directory with simulated latency, and identity/remote, an HTTP
// client for a running securevault API server.
package identity

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidCredentials is returned by Login when no account matches.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned by Signup when the email is taken.
	ErrEmailExists = errors.New("email exists")

	// ErrIDExists is returned by Directory.Create on an identifier collision.
	ErrIDExists = errors.New("user id exists")

	// ErrEmailNotFound is returned by ResetPassword and RecoverAccount.
	ErrEmailNotFound = errors.New("email not found")

	// ErrUnknownRole is returned when a role string is not one of the defined roles.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUserNotFound is returned by directory lookups by ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnavailable is returned when the identity service cannot be reached.
	ErrUnavailable = errors.New("identity service unavailable")
)

// IsNotFound reports whether err means the email is absent from the directory.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrEmailNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsAlreadyExists reports whether err means the email is already registered.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

// User is an account record. JSON field names match the persisted form.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         Role   `json:"role"`
	Organization string `json:"organization"`
	Avatar       string `json:"avatar,omitempty"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the uppercase initials used for avatar placeholders.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if r := []rune(part); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

// Clone returns a copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// SignupRequest carries the fields of a new account.
type SignupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         Role   `json:"role"`
	Organization string `json:"organization"`
}

// Result is returned by successful Login and Signup calls.
type Result struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Service authenticates and registers users.
type Service interface {
	// Login resolves the account registered under email.
	Login(ctx context.Context, email, password string) (*Result, error)

	// Signup registers a new account and signs it in.
	Signup(ctx context.Context, req SignupRequest) (*Result, error)

	// ResetPassword sends a reset email and returns a confirmation message.
	ResetPassword(ctx context.Context, email string) (string, error)

	// RecoverAccount starts account recovery and returns a confirmation message.
	RecoverAccount(ctx context.Context, email, answer string) (string, error)

	// Ping checks that the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the service.
	Close() error
}

// Record is a directory entry: the public user plus an optional password hash.
type Record struct {
	User         User
	PasswordHash string
}

// Directory stores account records keyed by ID and email.
type Directory interface {
	// FindByEmail looks up an account by exact email match.
	FindByEmail(ctx context.Context, email string) (*Record, error)

	// FindByID looks up an account by ID.
	FindByID(ctx context.Context, id string) (*Record, error)

	// Create inserts rec. The uniqueness check and the insert happen
	// atomically; ErrEmailExists is returned if the email is taken.
	Create(ctx context.Context, rec *Record) error

	// List returns all accounts in insertion order.
	List(ctx context.Context) ([]*Record, error)

	// Len returns the number of accounts.
	Len() int
}

// Confirmation messages returned by ResetPassword and RecoverAccount.
const (
	MessagePasswordReset   = "Password reset email sent successfully"
	MessageAccountRecovery = "Account recovery email sent successfully"
)
