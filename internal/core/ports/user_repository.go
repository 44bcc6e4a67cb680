package ports

import (
	"context"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// UserRepository is the identity store. Uniqueness of the normalized username
// and the normalized email is enforced by the store itself.
type UserRepository interface {
	// Create inserts a user and returns it with its store-assigned ID.
	// Duplicate username or email is reported as *domain.ValidationError.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByNormalizedEmail matches exactly on the normalized email.
	FindByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error)
	// FindByUsername normalizes username before lookup.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update persists the mutable profile fields (email, username, names,
	// phone, picture). Late uniqueness violations are reported as
	// domain.ErrDuplicateEmail or domain.ErrDuplicateUsername.
	Update(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	// AddToRole assigns an existing role. Fails with domain.ErrRoleNotFound
	// when the role has not been seeded.
	AddToRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository persists the fixed role set.
type RoleRepository interface {
	// Upsert inserts the role when no role with the same normalized name exists.
	Upsert(ctx context.Context, role domain.Role) error
	Exists(ctx context.Context, role domain.Role) (bool, error)
}
