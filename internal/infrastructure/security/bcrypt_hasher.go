package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/identity-hub/identity-service/internal/core/ports"
)

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports a rehash when the stored hash was produced with a lower
// cost than the one configured.
func (h *BcryptHasher) Verify(hash, password string) (bool, bool) {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return false, false
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true, false
	}
	return true, cost < h.cost
}
