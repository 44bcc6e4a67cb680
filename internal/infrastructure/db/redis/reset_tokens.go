package redis

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

const (
	resetTokenTTL   = 15 * time.Minute
	resetTokenBytes = 32
)

// ResetTokenStore keeps one outstanding password reset credential per user.
// Only the SHA-256 digest of the credential is stored.
// Key format: pwreset:<user_id>
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ResetTokenStore = (*ResetTokenStore)(nil)

// NewResetTokenStore creates a ResetTokenStore. A ttl <= 0 selects the default.
func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = resetTokenTTL
	}
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Generate issues a new credential for userID, replacing any previous one.
func (s *ResetTokenStore) Generate(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.client.Set(ctx, resetKey(userID), digest(token), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// Consume atomically removes the stored credential and checks it against
// token. A credential can be consumed at most once.
func (s *ResetTokenStore) Consume(ctx context.Context, userID, token string) error {
	stored, err := s.client.GetDel(ctx, resetKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(token))) != 1 {
		return domain.ErrInvalidResetToken
	}
	return nil
}

func resetKey(userID string) string {
	return "pwreset:" + userID
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
