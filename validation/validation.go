// Package validation checks the authentication forms before they reach
// the session. Messages are the ones shown next to each form field.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/aloks98/securevault/identity"
)

// ErrInvalid is wrapped by every Errors value.
var ErrInvalid = errors.New("validation failed")

// Errors maps a form field (its JSON name) to the first message that
// applies to it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error {
	return ErrInvalid
}

var securityQuestions = []string{
	"What was the name of your first pet?",
	"What was your mother's maiden name?",
	"What city were you born in?",
	"What was the name of your first school?",
	"What was your childhood nickname?",
}

// SecurityQuestions returns the questions offered by account recovery.
func SecurityQuestions() []string {
	return append([]string(nil), securityQuestions...)
}

// messages[field][tag]
var messages = map[string]map[string]string{
	"email": {
		"required": "Email is required",
		"email":    "Invalid email address",
	},
	"password": {
		"required":       "Password is required",
		"min":            "Password must be at least 8 characters",
		"strongpassword": "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character",
	},
	"confirmPassword": {
		"required": "Confirm password is required",
		"eqfield":  "Passwords must match",
	},
	"firstName": {
		"required": "First name is required",
		"min":      "First name must be at least 2 characters",
	},
	"lastName": {
		"required": "Last name is required",
		"min":      "Last name must be at least 2 characters",
	},
	"role": {
		"required": "Role is required",
		"role":     "Please select a valid role",
	},
	"organization": {
		"required": "Organization is required",
		"min":      "Organization must be at least 2 characters",
	},
	"securityQuestion": {
		"required": "Security question is required",
	},
	"securityAnswer": {
		"required": "Security answer is required",
		"min":      "Security answer must be at least 2 characters",
	},
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return identity.Role(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Struct validates a form. It returns nil or an Errors value.
func Struct(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	if m, ok := messages[field][tag]; ok {
		return m
	}
	return field + " is invalid"
}

const specials = "@$!%*?&"

// StrongPassword reports whether p has a lowercase letter, an uppercase
// letter, a digit and one of @$!%*?&, and starts with a letter, a digit or
// one of those symbols.
func StrongPassword(p string) bool {
	if p == "" || !allowed(rune(p[0])) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func allowed(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		strings.ContainsRune(specials, r)
}
