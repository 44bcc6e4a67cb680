package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// MinPasswordLength is the floor for any configured policy.
const MinPasswordLength = 6

// PasswordPolicy is the minimum-strength rule applied to new passwords.
type PasswordPolicy struct {
	MinLength int
}

// NewPasswordPolicy clamps minLength to MinPasswordLength.
func NewPasswordPolicy(minLength int) PasswordPolicy {
	if minLength < MinPasswordLength {
		minLength = MinPasswordLength
	}
	return PasswordPolicy{MinLength: minLength}
}

// Check records a violation on verr when password is too weak.
func (p PasswordPolicy) Check(verr *domain.ValidationError, password string) {
	if utf8.RuneCountInString(password) < p.MinLength {
		verr.Add(domain.CodePasswordTooShort,
			fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
}

// Validate returns a *domain.ValidationError when password is too weak.
func (p PasswordPolicy) Validate(password string) error {
	verr := &domain.ValidationError{}
	p.Check(verr, password)
	return verr.OrNil()
}
