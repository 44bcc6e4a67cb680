package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

// RoleSeeder makes sure every known role exists in the store.
type RoleSeeder struct {
	roles ports.RoleRepository
	log   zerolog.Logger
}

func NewRoleSeeder(roles ports.RoleRepository, log zerolog.Logger) *RoleSeeder {
	return &RoleSeeder{roles: roles, log: log}
}

// Seed upserts Admin, User and SuperAdmin. Running it again is a no-op.
func (s *RoleSeeder) Seed(ctx context.Context) error {
	for _, role := range domain.AllRoles() {
		if err := s.roles.Upsert(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}
	s.log.Info().Int("roles", len(domain.AllRoles())).Msg("roles seeded")
	return nil
}
