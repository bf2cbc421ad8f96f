package service

import (
	"net/mail"
	"strings"
	"unicode"

	"wastewise/api/internal/models"
)

// FieldError is a single validation failure, keyed by input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func validateRegistration(in RegisterInput) error {
	var fields []FieldError

	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, FieldError{"name", "Name is required"})
	}
	if strings.TrimSpace(in.Address) == "" {
		fields = append(fields, FieldError{"address", "Address is required"})
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, FieldError{"email", "Valid email is required"})
	}
	if strings.TrimSpace(in.Contact) == "" {
		fields = append(fields, FieldError{"contact", "Contact is required"})
	}
	if _, ok := models.ParseRole(in.Role); !ok {
		fields = append(fields, FieldError{"role", "Invalid role"})
	}
	fields = append(fields, validatePassword(in.Password)...)

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Password policy: at least 8 characters with an uppercase letter, a
// lowercase letter, a digit, and a special character.
func validatePassword(password string) []FieldError {
	var fields []FieldError

	if len(password) < 8 {
		fields = append(fields, FieldError{"password", "Password must be at least 8 characters"})
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if !lower {
		fields = append(fields, FieldError{"password", "Password must contain a lowercase letter"})
	}
	if !upper {
		fields = append(fields, FieldError{"password", "Password must contain an uppercase letter"})
	}
	if !digit {
		fields = append(fields, FieldError{"password", "Password must contain a number"})
	}
	if !special {
		fields = append(fields, FieldError{"password", "Password must contain a special character"})
	}

	return fields
}
