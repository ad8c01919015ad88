package validation

import (
	"errors"
	"testing"

	"github.com/aloks98/securevault/internal/wire"
)

func validSignup() wire.SignupRequest {
	return wire.SignupRequest{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
		Role:            "ethical_hacker",
		Organization:    "Org",
	}
}

func TestStruct_Login(t *testing.T) {
	tests := []struct {
		name string
		req  wire.LoginRequest
		want Errors
	}{
		{"valid", wire.LoginRequest{Email: "a@b.co", Password: "12345678"}, nil},
		{"empty", wire.LoginRequest{}, Errors{
			"email":    "Email is required",
			"password": "Password is required",
		}},
		{"bad email and short password", wire.LoginRequest{Email: "nope", Password: "short"}, Errors{
			"email":    "Invalid email address",
			"password": "Password must be at least 8 characters",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}
			var got Errors
			if !errors.As(err, &got) {
				t.Fatalf("Struct() error = %v, want Errors", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Struct() = %v, want %v", got, tt.want)
			}
			for f, m := range tt.want {
				if got[f] != m {
					t.Errorf("field %q = %q, want %q", f, got[f], m)
				}
			}
		})
	}
}

func TestStruct_Signup(t *testing.T) {
	if err := Struct(validSignup()); err != nil {
		t.Fatalf("Struct(valid) error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*wire.SignupRequest)
		field  string
		want   string
	}{
		{"short first name", func(r *wire.SignupRequest) { r.FirstName = "J" }, "firstName", "First name must be at least 2 characters"},
		{"missing last name", func(r *wire.SignupRequest) { r.LastName = "" }, "lastName", "Last name is required"},
		{"weak password", func(r *wire.SignupRequest) { r.Password, r.ConfirmPassword = "password1", "password1" }, "password",
			"Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"},
		{"mismatch", func(r *wire.SignupRequest) { r.ConfirmPassword = "Passw0rd?" }, "confirmPassword", "Passwords must match"},
		{"unknown role", func(r *wire.SignupRequest) { r.Role = "superuser" }, "role", "Please select a valid role"},
		{"missing role", func(r *wire.SignupRequest) { r.Role = "" }, "role", "Role is required"},
		{"short organization", func(r *wire.SignupRequest) { r.Organization = "O" }, "organization", "Organization must be at least 2 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.modify(&req)

			err := Struct(req)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Struct() error = %v, want ErrInvalid", err)
			}
			var got Errors
			errors.As(err, &got)
			if got[tt.field] != tt.want {
				t.Errorf("field %q = %q, want %q", tt.field, got[tt.field], tt.want)
			}
		})
	}
}

func TestStruct_Recovery(t *testing.T) {
	err := Struct(wire.RecoveryRequest{Email: "a@b.co", SecurityAnswer: "x"})
	var got Errors
	if !errors.As(err, &got) {
		t.Fatalf("Struct() error = %v", err)
	}
	if got["securityQuestion"] != "Security question is required" {
		t.Errorf("securityQuestion = %q", got["securityQuestion"])
	}
	if got["securityAnswer"] != "Security answer must be at least 2 characters" {
		t.Errorf("securityAnswer = %q", got["securityAnswer"])
	}

	ok := wire.RecoveryRequest{Email: "a@b.co", SecurityQuestion: SecurityQuestions()[2], SecurityAnswer: "Paris"}
	if err := Struct(ok); err != nil {
		t.Errorf("Struct(valid) error = %v", err)
	}
}

func TestStruct_PasswordReset(t *testing.T) {
	if err := Struct(wire.PasswordResetRequest{Email: "client@company.com"}); err != nil {
		t.Errorf("Struct() error = %v", err)
	}
	if err := Struct(wire.PasswordResetRequest{Email: "client"}); err == nil {
		t.Error("Struct() should reject an invalid email")
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"Aa1@", true},
		{"passw0rd!", false},
		{"PASSW0RD!", false},
		{"Password!", false},
		{"Passw0rd", false},
		{" Passw0rd!", false},
		{"Passw0rd! with spaces", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := StrongPassword(tt.password); got != tt.want {
			t.Errorf("StrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestSecurityQuestions(t *testing.T) {
	q := SecurityQuestions()
	if len(q) != 5 {
		t.Fatalf("len = %d, want 5", len(q))
	}
	q[0] = "changed"
	if SecurityQuestions()[0] == "changed" {
		t.Error("SecurityQuestions() must return a copy")
	}
}

func TestErrors_Error(t *testing.T) {
	e := Errors{"password": "b", "email": "a"}
	if got := e.Error(); got != "validation failed: email: a; password: b" {
		t.Errorf("Error() = %q", got)
	}
}
