package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/identity-hub/identity-service/internal/core/ports"
)

// RevocationStore is a denylist of token ids backed by Redis.
// Key format: revoked:<jti>
type RevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ ports.RevocationStore = (*RevocationStore)(nil)

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client, now: time.Now}
}

// Revoke denies tokenID until the given time. Entries expire on their own
// once the token could no longer be used anyway.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}
