// Package validate wraps go-playground/validator for request structs and
// email syntax checks.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

// Validator satisfies echo.Validator and ports.EmailValidator.
type Validator struct {
	v *validator.Validate
}

var _ ports.EmailValidator = (*Validator)(nil)

// New returns a Validator ready to be assigned to echo.Echo.Validator.
func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks struct tags. Violations come back as a
// *domain.ValidationError so the error handler renders them like business
// rule violations.
func (val *Validator) Validate(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	verr := &domain.ValidationError{}
	for _, fe := range ve {
		verr.Add(codeFor(fe), fieldError(fe))
	}
	return verr
}

// ValidateEmail checks address syntax only.
func (val *Validator) ValidateEmail(email string) error {
	if err := val.v.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

func codeFor(fe validator.FieldError) string {
	if fe.Tag() == "email" {
		return domain.CodeInvalidEmail
	}
	return domain.CodeInvalidRequest
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
