package ports

import (
	"context"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// UploadFile is a file received from a client.
type UploadFile struct {
	Name string
	Data []byte
}

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	PhoneNumber    string
	ProfilePicture *UploadFile // optional
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) error
}

type AuthService interface {
	// Login accepts an email or a username as identifier.
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	Logout(ctx context.Context, claims *domain.TokenClaims) error
}

type ProfileService interface {
	UpdateEmail(ctx context.Context, actor domain.Actor, targetID, newEmail string) (string, error)
	UpdatePassword(ctx context.Context, actor domain.Actor, targetID, oldPassword, newPassword string) error
	UpdateName(ctx context.Context, actor domain.Actor, targetID, firstName, lastName string) error
	DeleteUser(ctx context.Context, actor domain.Actor, targetID string) error
}

type UserQueryService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	ResolveActor(ctx context.Context, userID string) (domain.Actor, error)
}
