package redis

import (
	"context"
	"testing"
	"time"
)

func TestKeys(t *testing.T) {
	if got := revokedKey("abc"); got != "revoked:abc" {
		t.Fatalf("unexpected revoked key: %s", got)
	}
	if got := resetKey("u1"); got != "pwreset:u1" {
		t.Fatalf("unexpected reset key: %s", got)
	}
}

func TestDigestIsStableAndOpaque(t *testing.T) {
	a := digest("token")
	if a != digest("token") {
		t.Fatalf("digest not deterministic")
	}
	if a == "token" || len(a) != 64 {
		t.Fatalf("unexpected digest %q", a)
	}
	if a == digest("other") {
		t.Fatalf("distinct tokens share a digest")
	}
}

// A token that has already expired is not written.
func TestRevoke_PastExpiryIsNoop(t *testing.T) {
	store := &RevocationStore{client: nil, now: time.Now}
	if err := store.Revoke(context.Background(), "jti", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestNewResetTokenStore_DefaultTTL(t *testing.T) {
	if s := NewResetTokenStore(nil, 0); s.ttl != resetTokenTTL {
		t.Fatalf("expected default ttl %s, got %s", resetTokenTTL, s.ttl)
	}
}
