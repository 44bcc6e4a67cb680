package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
	"github.com/identity-hub/identity-service/internal/pkg/metrics"
)

const (
	defaultUsernameAttempts = 5
	minNameLength           = 2
)

// ProfileService applies guarded mutations to existing accounts.
type ProfileService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	emails      ports.EmailValidator
	resets      ports.ResetTokenStore
	uploader    ports.Uploader
	audit       ports.AuditPublisher
	policy      PasswordPolicy
	maxAttempts int
	suffix      func() int
	log         zerolog.Logger
	now         func() time.Time
}

var _ ports.ProfileService = (*ProfileService)(nil)

func NewProfileService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	emails ports.EmailValidator,
	resets ports.ResetTokenStore,
	uploader ports.Uploader,
	audit ports.AuditPublisher,
	policy PasswordPolicy,
	maxUsernameAttempts int,
	log zerolog.Logger,
) *ProfileService {
	if maxUsernameAttempts <= 0 {
		maxUsernameAttempts = defaultUsernameAttempts
	}
	return &ProfileService{
		users:       users,
		hasher:      hasher,
		emails:      emails,
		resets:      resets,
		uploader:    uploader,
		audit:       publisherOrDiscard(audit),
		policy:      policy,
		maxAttempts: maxUsernameAttempts,
		suffix:      randomSuffix,
		log:         log,
		now:         time.Now,
	}
}

// randomSuffix returns a 4-digit number in [1000, 9999].
func randomSuffix() int {
	return rand.IntN(9000) + 1000
}

// UpdateEmail changes the target's email and derives a new username from it.
// When the derived username is taken a random 4-digit suffix is appended,
// up to maxAttempts candidates in total. Returns the username stored.
func (s *ProfileService) UpdateEmail(ctx context.Context, actor domain.Actor, targetID, newEmail string) (username string, err error) {
	defer s.observe("update_email", &err)

	if err := Authorize(actor, targetID); err != nil {
		return "", err
	}
	if s.emails.ValidateEmail(newEmail) != nil {
		return "", domain.NewValidationError(domain.CodeInvalidEmail, fmt.Sprintf("email '%s' is invalid", newEmail))
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return "", err
	}

	normalizedEmail := domain.Normalize(newEmail)
	owner, err := s.users.FindByNormalizedEmail(ctx, normalizedEmail)
	switch {
	case err == nil && owner.ID != user.ID:
		return "", domain.ErrDuplicateEmail
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("check email: %w", err)
	}

	base := domain.UsernameFromEmail(newEmail)
	previousEmail := user.Email
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s%d", base, s.suffix())
		}

		free, err := s.usernameFree(ctx, candidate, user.ID)
		if err != nil {
			return "", err
		}
		if !free {
			continue
		}

		user.Email = newEmail
		user.NormalizedEmail = normalizedEmail
		user.Username = candidate
		user.NormalizedUsername = domain.Normalize(candidate)
		user.UpdatedAt = s.now().UTC()

		err = s.users.Update(ctx, user)
		if errors.Is(err, domain.ErrDuplicateUsername) {
			s.log.Debug().Str("user_id", user.ID).Str("candidate", candidate).Msg("username taken concurrently, retrying")
			continue
		}
		if err != nil {
			return "", err
		}

		metrics.UsernameCandidates.Observe(float64(attempt))
		s.audit.Publish(domain.AccountEvent{
			UserID:     user.ID,
			ActorID:    actor.ID,
			Type:       domain.EventEmailChanged,
			OccurredAt: user.UpdatedAt,
			Details:    map[string]string{"previous_email": previousEmail, "username": candidate},
		})
		return candidate, nil
	}

	s.log.Warn().Str("user_id", user.ID).Str("base", base).Int("attempts", s.maxAttempts).Msg("no free username candidate")
	return "", domain.ErrUsernameExhausted
}

func (s *ProfileService) usernameFree(ctx context.Context, candidate, selfID string) (bool, error) {
	holder, err := s.users.FindByUsername(ctx, candidate)
	if errors.Is(err, domain.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return holder.ID == selfID, nil
}

// UpdatePassword replaces the target's password. An Admin acting on another
// account goes through a single-use reset credential and oldPassword is
// ignored; everyone else must present the current password.
func (s *ProfileService) UpdatePassword(ctx context.Context, actor domain.Actor, targetID, oldPassword, newPassword string) (err error) {
	defer s.observe("update_password", &err)

	if err := Authorize(actor, targetID); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	mode := "change"
	if actor.IsAdmin() && actor.ID != targetID {
		mode = "reset"
		token, err := s.resets.Generate(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("generate reset token: %w", err)
		}
		if err := s.resets.Consume(ctx, user.ID, token); err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
	} else if ok, _ := s.hasher.Verify(user.PasswordHash, oldPassword); !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.audit.Publish(domain.AccountEvent{
		UserID:     user.ID,
		ActorID:    actor.ID,
		Type:       domain.EventPasswordChanged,
		OccurredAt: s.now().UTC(),
		Details:    map[string]string{"mode": mode},
	})
	return nil
}

// UpdateName replaces first and last name. Both must hold at least two
// non-blank characters.
func (s *ProfileService) UpdateName(ctx context.Context, actor domain.Actor, targetID, firstName, lastName string) (err error) {
	defer s.observe("update_name", &err)

	if err := Authorize(actor, targetID); err != nil {
		return err
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	verr := &domain.ValidationError{}
	if utf8.RuneCountInString(firstName) < minNameLength {
		verr.Add(domain.CodeInvalidName, fmt.Sprintf("first name must be at least %d characters", minNameLength))
	}
	if utf8.RuneCountInString(lastName) < minNameLength {
		verr.Add(domain.CodeInvalidName, fmt.Sprintf("last name must be at least %d characters", minNameLength))
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.audit.Publish(domain.AccountEvent{
		UserID:     user.ID,
		ActorID:    actor.ID,
		Type:       domain.EventNameChanged,
		OccurredAt: user.UpdatedAt,
	})
	return nil
}

// DeleteUser removes the target account together with its role
// assignments and its uploaded profile picture.
func (s *ProfileService) DeleteUser(ctx context.Context, actor domain.Actor, targetID string) (err error) {
	defer s.observe("delete", &err)

	if err := Authorize(actor, targetID); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	if user.ProfilePictureURL != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, user.ProfilePictureURL); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to remove profile picture")
		}
	}

	s.audit.Publish(domain.AccountEvent{
		UserID:     user.ID,
		ActorID:    actor.ID,
		Type:       domain.EventDeleted,
		OccurredAt: s.now().UTC(),
		Details:    map[string]string{"username": user.Username},
	})
	s.log.Info().Str("user_id", user.ID).Str("actor_id", actor.ID).Msg("user deleted")
	return nil
}

func (s *ProfileService) observe(operation string, err *error) {
	metrics.ProfileMutationsTotal.WithLabelValues(operation, resultLabel(*err)).Inc()
}
