// Package wire defines the JSON bodies exchanged between the API server
// and the remote identity client. Request bodies carry the validate tags
// checked by the validation package.
package wire

import (
	"github.com/aloks98/securevault/dashboard"
	"github.com/aloks98/securevault/identity"
)

// Codes used only on the wire. The remaining codes are the session codes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_FAILED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
)

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignupRequest is the body of POST /v1/auth/signup.
type SignupRequest struct {
	FirstName       string `json:"firstName" validate:"required,min=2"`
	LastName        string `json:"lastName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,role"`
	Organization    string `json:"organization" validate:"required,min=2"`
}

// PasswordResetRequest is the body of POST /v1/auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RecoveryRequest is the body of POST /v1/auth/recover.
type RecoveryRequest struct {
	Email            string `json:"email" validate:"required,email"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required,min=2"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	User  *identity.User `json:"user"`
	Token string         `json:"token"`
}

// MessageResponse is returned by password reset and recovery.
type MessageResponse struct {
	Message string `json:"message"`
}

// TasksResponse is returned by GET /v1/tasks.
type TasksResponse struct {
	Query  string                       `json:"query,omitempty"`
	Tasks  []dashboard.Task             `json:"tasks"`
	Counts map[dashboard.TaskStatus]int `json:"counts"`
}

// UsersResponse is returned by GET /v1/admin/users.
type UsersResponse struct {
	Users []identity.User `json:"users"`
	Total int             `json:"total"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps Error.
type ErrorResponse struct {
	Error Error `json:"error"`
}
