package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrConflict           = errors.New("resource conflict")
	ErrSigningKeyMissing  = errors.New("token signing key is not configured")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset token")
	ErrUploadRejected     = errors.New("upload rejected")
)

// Uniqueness violations. Each wraps ErrConflict.
var (
	ErrDuplicateEmail    = fmt.Errorf("email already taken: %w", ErrConflict)
	ErrDuplicateUsername = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrUsernameExhausted = fmt.Errorf("no free username candidate found: %w", ErrConflict)
)

// Validation error codes.
const (
	CodeInvalidEmail      = "InvalidEmail"
	CodePasswordTooShort  = "PasswordTooShort"
	CodeDuplicateUserName = "DuplicateUserName"
	CodeDuplicateEmail    = "DuplicateEmail"
	CodeInvalidName       = "InvalidName"
	CodeInvalidRequest    = "InvalidRequest"
)

// FieldError is a single business-rule violation.
type FieldError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ValidationError carries every rule violated by one request.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError builds a ValidationError holding a single violation.
func NewValidationError(code, description string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Code: code, Description: description}}}
}

// Add appends a violation.
func (e *ValidationError) Add(code, description string) {
	e.Errors = append(e.Errors, FieldError{Code: code, Description: description})
}

// OrNil returns nil when no violation was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Description)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
