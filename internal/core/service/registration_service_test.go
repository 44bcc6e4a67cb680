package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

func newTestRegistration(repo *stubUserRepo, uploader *stubUploader, pub *recordingPublisher) *RegistrationService {
	return NewRegistrationService(repo, stubHasher{}, stubEmailValidator{}, uploader, pub, NewPasswordPolicy(6), zerolog.Nop())
}

func validInput() ports.RegisterInput {
	return ports.RegisterInput{
		Email:     "alice@example.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newStubUserRepo()
	pub := &recordingPublisher{}
	svc := newTestRegistration(repo, &stubUploader{}, pub)

	if err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := repo.FindByNormalizedEmail(context.Background(), "ALICE@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if user.Username != "alice" || user.NormalizedUsername != "ALICE" {
		t.Fatalf("unexpected username: %s / %s", user.Username, user.NormalizedUsername)
	}
	if user.PasswordHash != "hashed:secret1" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}
	if !user.HasRole(domain.RoleUser) || len(user.Roles) != 1 {
		t.Fatalf("expected exactly the User role, got %v", user.Roles)
	}
	if got := pub.types(); len(got) != 1 || got[0] != domain.EventRegistered {
		t.Fatalf("expected one registered event, got %v", got)
	}
}

func TestRegister_UsernameFromLastAt(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestRegistration(repo, &stubUploader{}, nil)

	in := validInput()
	in.Email = `"a@b"@example.com`
	if err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), `"a@b"`); err != nil {
		t.Fatalf("expected username taken from before the last '@': %v", err)
	}
}

func TestRegister_CollectsAllViolations(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestRegistration(repo, &stubUploader{}, nil)

	err := svc.Register(context.Background(), ports.RegisterInput{Email: "not-an-email", Password: "123"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	codes := map[string]bool{}
	for _, fe := range verr.Errors {
		codes[fe.Code] = true
	}
	if !codes[domain.CodeInvalidEmail] || !codes[domain.CodePasswordTooShort] {
		t.Fatalf("expected InvalidEmail and PasswordTooShort, got %+v", verr.Errors)
	}
	if repo.count() != 0 {
		t.Fatalf("expected no user stored")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u0", "someone", "ALICE@example.com")
	svc := newTestRegistration(repo, &stubUploader{}, nil)

	in := validInput()
	in.Email = "alice@EXAMPLE.com"
	err := svc.Register(context.Background(), in)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Code != domain.CodeDuplicateEmail {
		t.Fatalf("expected DuplicateEmail, got %+v", verr.Errors)
	}
	if repo.count() != 1 {
		t.Fatalf("expected store unchanged")
	}
}

func TestRegister_DuplicateUsernameNotDisambiguated(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u0", "alice", "alice@other.org")
	svc := newTestRegistration(repo, &stubUploader{}, nil)

	err := svc.Register(context.Background(), validInput())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Errors[0].Code != domain.CodeDuplicateUserName {
		t.Fatalf("expected DuplicateUserName, got %v", err)
	}
}

func TestRegister_RoleFailureRollsBack(t *testing.T) {
	repo := newStubUserRepo()
	repo.addToRoleErr = domain.ErrRoleNotFound
	pub := &recordingPublisher{}
	svc := newTestRegistration(repo, &stubUploader{}, pub)

	err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected role error, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatalf("expected compensating delete, %d users remain", repo.count())
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one delete, got %v", repo.deleted)
	}
	if len(pub.types()) != 0 {
		t.Fatalf("expected no audit event, got %v", pub.types())
	}
}

func TestRegister_RoleFailureAndCompensationFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.addToRoleErr = domain.ErrRoleNotFound
	repo.deleteErr = errors.New("store down")
	svc := newTestRegistration(repo, &stubUploader{}, nil)

	if err := svc.Register(context.Background(), validInput()); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected role error to be returned, got %v", err)
	}
}

func TestRegister_UploadFailureDoesNotAbort(t *testing.T) {
	repo := newStubUserRepo()
	uploader := &stubUploader{uploadErr: errors.New("disk full")}
	svc := newTestRegistration(repo, uploader, nil)

	in := validInput()
	in.ProfilePicture = &ports.UploadFile{Name: "me.png", Data: []byte("png")}
	if err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	user, _ := repo.FindByUsername(context.Background(), "alice")
	if user.ProfilePictureURL != "" {
		t.Fatalf("expected empty picture url, got %q", user.ProfilePictureURL)
	}
}

func TestRegister_StoresPictureURL(t *testing.T) {
	repo := newStubUserRepo()
	uploader := &stubUploader{url: "http://localhost/uploads/user-profile/x.png"}
	svc := newTestRegistration(repo, uploader, nil)

	in := validInput()
	in.ProfilePicture = &ports.UploadFile{Name: "me.png", Data: []byte("png")}
	if err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(uploader.uploads) != 1 || uploader.uploads[0] != "user-profile/me.png" {
		t.Fatalf("unexpected uploads: %v", uploader.uploads)
	}
	user, _ := repo.FindByUsername(context.Background(), "alice")
	if user.ProfilePictureURL != uploader.url {
		t.Fatalf("expected picture url %q, got %q", uploader.url, user.ProfilePictureURL)
	}
}

func TestRegister_DuplicateRemovesUploadedPicture(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u0", "alice", "alice@example.com")
	uploader := &stubUploader{url: "http://localhost/uploads/user-profile/x.png"}
	svc := newTestRegistration(repo, uploader, nil)

	in := validInput()
	in.ProfilePicture = &ports.UploadFile{Name: "me.png", Data: []byte("png")}
	if err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(uploader.deletes) != 1 {
		t.Fatalf("expected orphaned picture to be removed, got %v", uploader.deletes)
	}
}
