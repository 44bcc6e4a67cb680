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

// ProfilePictureFolder is the upload folder for profile pictures.
const ProfilePictureFolder = "user-profile"

// RegistrationService creates accounts and assigns the default role.
type RegistrationService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	emails   ports.EmailValidator
	uploader ports.Uploader
	audit    ports.AuditPublisher
	policy   PasswordPolicy
	log      zerolog.Logger
	now      func() time.Time
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	emails ports.EmailValidator,
	uploader ports.Uploader,
	audit ports.AuditPublisher,
	policy PasswordPolicy,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:    users,
		hasher:   hasher,
		emails:   emails,
		uploader: uploader,
		audit:    publisherOrDiscard(audit),
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// Register validates the input, stores the account and assigns the User
// role. When the role cannot be assigned the account is removed again.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (err error) {
	result := "success"
	defer func() {
		if err != nil && result == "success" {
			result = resultLabel(err)
		}
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	}()

	verr := &domain.ValidationError{}
	if s.emails.ValidateEmail(in.Email) != nil {
		verr.Add(domain.CodeInvalidEmail, fmt.Sprintf("email '%s' is invalid", in.Email))
	}
	s.policy.Check(verr, in.Password)
	if err := verr.OrNil(); err != nil {
		return err
	}

	pictureURL := s.uploadPicture(ctx, in.ProfilePicture)

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.discardPicture(ctx, pictureURL)
		return fmt.Errorf("hash password: %w", err)
	}

	username := domain.UsernameFromEmail(in.Email)
	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:           username,
		NormalizedUsername: domain.Normalize(username),
		Email:              in.Email,
		NormalizedEmail:    domain.Normalize(in.Email),
		PasswordHash:       hash,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		PhoneNumber:        in.PhoneNumber,
		ProfilePictureURL:  pictureURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		s.discardPicture(ctx, pictureURL)
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	if roleErr := s.users.AddToRole(ctx, created.ID, domain.DefaultRole); roleErr != nil {
		result = "rolled_back"
		s.log.Error().Err(roleErr).Str("user_id", created.ID).Msg("role assignment failed, removing user")
		if delErr := s.users.Delete(ctx, created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", created.ID).Msg("compensating delete failed")
		}
		s.discardPicture(ctx, pictureURL)
		return fmt.Errorf("assign role %s: %w", domain.DefaultRole, roleErr)
	}

	s.audit.Publish(domain.AccountEvent{
		UserID:     created.ID,
		ActorID:    created.ID,
		Type:       domain.EventRegistered,
		OccurredAt: now,
		Details:    map[string]string{"username": username},
	})

	s.log.Info().Str("user_id", created.ID).Str("username", username).Msg("user registered")
	return nil
}

func (s *RegistrationService) uploadPicture(ctx context.Context, file *ports.UploadFile) string {
	if file == nil || s.uploader == nil {
		return ""
	}
	url, err := s.uploader.Upload(ctx, file.Name, file.Data, ProfilePictureFolder)
	if err != nil {
		s.log.Warn().Err(err).Str("file", file.Name).Msg("profile picture upload failed, continuing without it")
		return ""
	}
	return url
}

func (s *RegistrationService) discardPicture(ctx context.Context, url string) {
	if url == "" || s.uploader == nil {
		return
	}
	if err := s.uploader.Delete(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("failed to remove orphaned profile picture")
	}
}
