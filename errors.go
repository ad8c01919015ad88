package securevault

import (
	"context"
	"errors"
	"fmt"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/validation"
)

// Error codes for categorizing errors.
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeEmailNotFound       = "EMAIL_NOT_FOUND"
	CodeUnknownRole         = "UNKNOWN_ROLE"
	CodeValidation          = "VALIDATION_FAILED"
	CodeIdentityUnavailable = "IDENTITY_UNAVAILABLE"
	CodeStoreRequired       = "STORE_REQUIRED"
	CodeIdentityRequired    = "IDENTITY_REQUIRED"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
	CodeCanceled            = "CANCELED"
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeSessionClosed       = "SESSION_CLOSED"
	CodeInternal            = "INTERNAL"
)

// Sentinel errors for use with errors.Is().
var (
	// Identity errors, shared with the identity package.
	ErrInvalidCredentials = identity.ErrInvalidCredentials
	ErrEmailExists        = identity.ErrEmailExists
	ErrEmailNotFound      = identity.ErrEmailNotFound
	ErrUnknownRole        = identity.ErrUnknownRole
	ErrUnavailable        = identity.ErrUnavailable

	// Setup errors
	ErrStoreRequired    = errors.New("store is required")
	ErrIdentityRequired = errors.New("identity service is required")
	ErrConfigInvalid    = errors.New("configuration is invalid")

	// Runtime errors
	ErrStoreUnavailable = errors.New("store is unavailable")
	ErrSessionClosed    = errors.New("session is closed")
)

// SessionError is a structured error carrying a code and a message
// suitable for showing to the user.
type SessionError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(code, message string, err error) *SessionError {
	return &SessionError{Code: code, Message: message, Err: err}
}

// wrapError classifies err into a SessionError. Already classified
// errors are returned unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var se *SessionError
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return NewSessionError(CodeInvalidCredentials, "Invalid email or password", err)
	case errors.Is(err, identity.ErrEmailExists):
		return NewSessionError(CodeEmailExists, "Email already exists", err)
	case errors.Is(err, identity.ErrEmailNotFound):
		return NewSessionError(CodeEmailNotFound, "Email not found", err)
	case errors.Is(err, identity.ErrUnknownRole):
		return NewSessionError(CodeUnknownRole, "Please select a valid role", err)
	case errors.Is(err, validation.ErrInvalid):
		return NewSessionError(CodeValidation, "Please fix the highlighted fields", err)
	case errors.Is(err, identity.ErrUnavailable):
		return NewSessionError(CodeIdentityUnavailable, "Identity service is unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewSessionError(CodeTimeout, "The request timed out", err)
	case errors.Is(err, context.Canceled):
		return NewSessionError(CodeCanceled, "The request was canceled", err)
	case errors.Is(err, ErrSessionClosed):
		return NewSessionError(CodeSessionClosed, "Session is closed", err)
	case errors.Is(err, ErrStoreUnavailable):
		return NewSessionError(CodeStoreUnavailable, "Could not save the session", err)
	default:
		return NewSessionError(CodeInternal, "Something went wrong", err)
	}
}

// Classify returns err as a SessionError, classifying it first if needed.
// It returns nil for a nil error.
func Classify(err error) *SessionError {
	if err == nil {
		return nil
	}
	var se *SessionError
	errors.As(wrapError(err), &se)
	return se
}

// ErrorCode returns the code of a SessionError in err's chain, or "".
func ErrorCode(err error) string {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// UserMessage returns the user-facing message of err.
func UserMessage(err error) string {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsNotFound reports whether err means the email is not registered.
func IsNotFound(err error) bool {
	return identity.IsNotFound(err)
}

// IsAlreadyExists reports whether err means the email is already registered.
func IsAlreadyExists(err error) bool {
	return identity.IsAlreadyExists(err)
}

// IsConfigError returns true if the error is a configuration-related error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrStoreRequired) ||
		errors.Is(err, ErrIdentityRequired)
}
