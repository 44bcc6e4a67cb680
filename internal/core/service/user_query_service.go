package service

import (
	"context"
	"fmt"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

type userQueryService struct {
	users ports.UserRepository
}

// NewUserQueryService returns a read-only view over the identity store.
func NewUserQueryService(users ports.UserRepository) ports.UserQueryService {
	return &userQueryService{users: users}
}

func (s *userQueryService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userQueryService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// ResolveActor loads the current role set of userID. Roles are read from the
// store on every request so role changes apply without reissuing tokens.
func (s *userQueryService) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.ActorFromUser(user), nil
}
