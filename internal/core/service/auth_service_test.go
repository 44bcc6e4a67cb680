package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

func newTestAuth(repo *stubUserRepo, hasher stubHasher, revocations *stubRevocations, pub *recordingPublisher) *AuthService {
	issuer := NewTokenIssuer(TokenConfig{Secret: "test-secret", Issuer: "identity-service", Audience: "identity-clients"})
	return NewAuthService(repo, hasher, stubEmailValidator{}, issuer, revocations, pub, zerolog.Nop())
}

func TestLogin_ByEmailCaseInsensitive(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u1", "alice", "alice@example.com", domain.RoleUser)
	pub := &recordingPublisher{}
	svc := newTestAuth(repo, stubHasher{}, &stubRevocations{}, pub)

	token, user, err := svc.Login(context.Background(), "Alice@Example.COM", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if got := pub.types(); len(got) != 1 || got[0] != domain.EventLoggedIn {
		t.Fatalf("expected logged_in event, got %v", got)
	}
}

func TestLogin_ByUsername(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u1", "alice", "alice@example.com")
	svc := newTestAuth(repo, stubHasher{}, &stubRevocations{}, nil)

	if _, user, err := svc.Login(context.Background(), "ALICE", "secret1"); err != nil || user.ID != "u1" {
		t.Fatalf("expected login by username, got user=%v err=%v", user, err)
	}
}

// An email-shaped identifier is never looked up as a username, and the
// password check does not depend on how the account was found.
func TestLogin_UsernameDiffersFromEmailLocalPart(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u1", "alice4821", "alice@example.com")
	svc := newTestAuth(repo, stubHasher{}, &stubRevocations{}, nil)

	if _, user, err := svc.Login(context.Background(), "alice@example.com", "secret1"); err != nil || user.ID != "u1" {
		t.Fatalf("expected login by email, got user=%v err=%v", user, err)
	}
	if _, user, err := svc.Login(context.Background(), "alice4821", "secret1"); err != nil || user.ID != "u1" {
		t.Fatalf("expected login by disambiguated username, got user=%v err=%v", user, err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u1", "alice", "alice@example.com")
	svc := newTestAuth(repo, stubHasher{}, &stubRevocations{}, nil)

	tests := []struct {
		name, identifier, password string
	}{
		{"unknown email", "bob@example.com", "secret1"},
		{"unknown username", "bob", "secret1"},
		{"wrong password", "alice@example.com", "nope"},
		{"empty password", "alice", ""},
		{"empty identifier", "", "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Login(context.Background(), tt.identifier, tt.password); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLogin_RehashesWhenRequested(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("u1", "alice", "alice@example.com")
	svc := newTestAuth(repo, stubHasher{rehash: true}, &stubRevocations{}, nil)

	if _, _, err := svc.Login(context.Background(), "alice", "secret1"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if repo.hashUpdates != 1 {
		t.Fatalf("expected rehashed password stored once, got %d writes", repo.hashUpdates)
	}
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	revocations := &stubRevocations{}
	pub := &recordingPublisher{}
	svc := newTestAuth(newStubUserRepo(), stubHasher{}, revocations, pub)

	exp := time.Now().Add(30 * time.Minute)
	claims := &domain.TokenClaims{Subject: "u1", TokenID: "jti-1", ExpiresAt: exp}
	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if until, ok := revocations.revoked["jti-1"]; !ok || !until.Equal(exp) {
		t.Fatalf("expected jti-1 revoked until %s, got %v", exp, revocations.revoked)
	}
	if got := pub.types(); len(got) != 1 || got[0] != domain.EventLoggedOut {
		t.Fatalf("expected logged_out event, got %v", got)
	}
}

func TestLogout_RequiresTokenID(t *testing.T) {
	svc := newTestAuth(newStubUserRepo(), stubHasher{}, &stubRevocations{}, nil)
	if err := svc.Logout(context.Background(), &domain.TokenClaims{Subject: "u1"}); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := svc.Logout(context.Background(), nil); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for nil claims, got %v", err)
	}
}
