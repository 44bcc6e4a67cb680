package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
	"github.com/identity-hub/identity-service/internal/pkg/metrics"
)

// AuthService implements login and logout.
type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	emails      ports.EmailValidator
	tokens      ports.TokenIssuer
	revocations ports.RevocationStore
	audit       ports.AuditPublisher
	log         zerolog.Logger
	now         func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	emails ports.EmailValidator,
	tokens ports.TokenIssuer,
	revocations ports.RevocationStore,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		emails:      emails,
		tokens:      tokens,
		revocations: revocations,
		audit:       publisherOrDiscard(audit),
		log:         log,
		now:         time.Now,
	}
}

// Login resolves identifier as an email when it is email-shaped and as a
// username otherwise, then verifies password against the resolved account.
// Unknown accounts and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	kind := "username"
	if s.emails.ValidateEmail(identifier) == nil {
		kind = "email"
	}

	token, user, err := s.login(ctx, kind, identifier, password)
	switch {
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues("success", kind).Inc()
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials", kind).Inc()
	default:
		metrics.LoginAttemptsTotal.WithLabelValues("error", kind).Inc()
	}
	return token, user, err
}

func (s *AuthService) login(ctx context.Context, kind, identifier, password string) (string, *domain.User, error) {
	if identifier == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	if kind == "email" {
		user, err = s.users.FindByNormalizedEmail(ctx, domain.Normalize(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	ok, needsRehash := s.hasher.Verify(user.PasswordHash, password)
	if !ok {
		return "", nil, domain.ErrInvalidCredentials
	}
	if needsRehash {
		s.rehash(ctx, user, password)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.audit.Publish(domain.AccountEvent{
		UserID:     user.ID,
		ActorID:    user.ID,
		Type:       domain.EventLoggedIn,
		OccurredAt: s.now().UTC(),
		Details:    map[string]string{"identifier": kind},
	})
	return token, user, nil
}

func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to store rehashed password")
		return
	}
	user.PasswordHash = hash
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *domain.TokenClaims) error {
	if claims == nil || claims.TokenID == "" {
		return domain.ErrInvalidToken
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	metrics.TokensRevokedTotal.Inc()

	s.audit.Publish(domain.AccountEvent{
		UserID:     claims.Subject,
		ActorID:    claims.Subject,
		Type:       domain.EventLoggedOut,
		OccurredAt: s.now().UTC(),
	})
	return nil
}
