package securevault

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/validation"
)

func TestSessionError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SessionError
		want string
	}{
		{
			name: "without wrapped error",
			err:  NewSessionError(CodeEmailExists, "Email already exists", nil),
			want: "EMAIL_EXISTS: Email already exists",
		},
		{
			name: "with wrapped error",
			err:  NewSessionError(CodeInvalidCredentials, "Invalid email or password", identity.ErrInvalidCredentials),
			want: "INVALID_CREDENTIALS: Invalid email or password: invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionError_Unwrap(t *testing.T) {
	err := NewSessionError(CodeEmailNotFound, "Email not found", ErrEmailNotFound)

	if !errors.Is(err, ErrEmailNotFound) {
		t.Error("errors.Is() should find the wrapped sentinel")
	}

	var se *SessionError
	if !errors.As(fmt.Errorf("outer: %w", err), &se) {
		t.Fatal("errors.As() should find SessionError")
	}
	if se.Code != CodeEmailNotFound {
		t.Errorf("Code = %q", se.Code)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		err     error
		code    string
		message string
	}{
		{identity.ErrInvalidCredentials, CodeInvalidCredentials, "Invalid email or password"},
		{identity.ErrEmailExists, CodeEmailExists, "Email already exists"},
		{identity.ErrEmailNotFound, CodeEmailNotFound, "Email not found"},
		{fmt.Errorf("%w: %q", identity.ErrUnknownRole, "root"), CodeUnknownRole, "Please select a valid role"},
		{identity.ErrUnavailable, CodeIdentityUnavailable, "Identity service is unavailable"},
		{validation.ErrInvalid, CodeValidation, "Please fix the highlighted fields"},
		{context.DeadlineExceeded, CodeTimeout, "The request timed out"},
		{context.Canceled, CodeCanceled, "The request was canceled"},
		{ErrSessionClosed, CodeSessionClosed, "Session is closed"},
		{ErrStoreUnavailable, CodeStoreUnavailable, "Could not save the session"},
		{errors.New("boom"), CodeInternal, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := wrapError(tt.err)
			if ErrorCode(err) != tt.code {
				t.Errorf("ErrorCode() = %q, want %q", ErrorCode(err), tt.code)
			}
			if UserMessage(err) != tt.message {
				t.Errorf("UserMessage() = %q, want %q", UserMessage(err), tt.message)
			}
			if !errors.Is(err, tt.err) {
				t.Error("wrapped error lost its cause")
			}
		})
	}

	if wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}

	once := wrapError(identity.ErrEmailExists)
	if twice := wrapError(once); twice != once {
		t.Error("wrapError() should not re-wrap a SessionError")
	}
}

func TestErrorHelpers(t *testing.T) {
	if ErrorCode(errors.New("plain")) != "" {
		t.Error("ErrorCode() of a plain error should be empty")
	}
	if UserMessage(errors.New("plain")) != "plain" {
		t.Error("UserMessage() should fall back to Error()")
	}
	if UserMessage(nil) != "" {
		t.Error("UserMessage(nil) should be empty")
	}

	if !IsNotFound(wrapError(identity.ErrEmailNotFound)) {
		t.Error("IsNotFound() = false for ErrEmailNotFound")
	}
	if !IsAlreadyExists(wrapError(identity.ErrEmailExists)) {
		t.Error("IsAlreadyExists() = false for ErrEmailExists")
	}
	if IsAlreadyExists(identity.ErrEmailNotFound) {
		t.Error("IsAlreadyExists() = true for ErrEmailNotFound")
	}

	for _, err := range []error{ErrConfigInvalid, ErrStoreRequired, ErrIdentityRequired} {
		if !IsConfigError(fmt.Errorf("wrap: %w", err)) {
			t.Errorf("IsConfigError(%v) = false", err)
		}
	}
	if IsConfigError(ErrSessionClosed) {
		t.Error("IsConfigError(ErrSessionClosed) = true")
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	se := Classify(fmt.Errorf("login: %w", identity.ErrEmailExists))
	if se == nil || se.Code != CodeEmailExists {
		t.Errorf("Classify() = %+v", se)
	}
}
