package ports

import (
	"context"
	"time"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash, and whether the hash
	// should be regenerated with the current parameters.
	Verify(hash, password string) (ok bool, needsRehash bool)
}

// TokenIssuer builds signed bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*domain.TokenClaims, error)
}

// RevocationStore tracks tokens invalidated before their expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ResetTokenStore issues single-use password reset credentials.
type ResetTokenStore interface {
	Generate(ctx context.Context, userID string) (string, error)
	// Consume validates and invalidates the credential.
	Consume(ctx context.Context, userID, token string) error
}

// EmailValidator checks email address syntax.
type EmailValidator interface {
	ValidateEmail(email string) error
}

// Uploader stores client files and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}
