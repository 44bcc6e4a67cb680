package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testIssuer(now time.Time) *TokenIssuer {
	return NewTokenIssuer(TokenConfig{
		Secret:   "test-secret",
		Issuer:   "identity-service",
		Audience: "identity-clients",
		TTL:      time.Hour,
		Clock:    fixedClock(now),
	})
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := testIssuer(now)
	user := &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}

	raw, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := issuer.Verify(raw)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "u1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected a token id")
	}
	if claims.Issuer != "identity-service" {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "identity-clients" {
		t.Fatalf("unexpected audience: %v", claims.Audience)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry %s, got %s", now.Add(time.Hour), claims.ExpiresAt)
	}
	if !claims.NotBefore.Equal(now) || !claims.IssuedAt.Equal(now) {
		t.Fatalf("expected nbf and iat at %s, got %s / %s", now, claims.NotBefore, claims.IssuedAt)
	}
}

func TestTokenIssuer_FreshTokenIDPerIssue(t *testing.T) {
	issuer := testIssuer(time.Now())
	user := &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}

	first, _ := issuer.Issue(user)
	second, _ := issuer.Issue(user)
	c1, err := issuer.Verify(first)
	if err != nil {
		t.Fatalf("Verify first: %v", err)
	}
	c2, err := issuer.Verify(second)
	if err != nil {
		t.Fatalf("Verify second: %v", err)
	}
	if c1.TokenID == c2.TokenID {
		t.Fatalf("expected distinct token ids, both were %s", c1.TokenID)
	}
}

func TestTokenIssuer_MissingSecret(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{})
	if _, err := issuer.Issue(&domain.User{ID: "u1"}); !errors.Is(err, domain.ErrSigningKeyMissing) {
		t.Fatalf("expected ErrSigningKeyMissing, got %v", err)
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	if ttl := NewTokenIssuer(TokenConfig{Secret: "s"}).TTL(); ttl != time.Hour {
		t.Fatalf("expected default ttl 1h, got %s", ttl)
	}
}

func TestTokenIssuer_VerifyRejects(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	user := &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	raw, err := testIssuer(now).Issue(user)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	otherAudience := NewTokenIssuer(TokenConfig{
		Secret: "test-secret", Issuer: "identity-service", Audience: "someone-else", Clock: fixedClock(now),
	})
	otherIssuer := NewTokenIssuer(TokenConfig{
		Secret: "test-secret", Issuer: "elsewhere", Audience: "identity-clients", Clock: fixedClock(now),
	})
	otherSecret := NewTokenIssuer(TokenConfig{
		Secret: "wrong", Issuer: "identity-service", Audience: "identity-clients", Clock: fixedClock(now),
	})

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1", ID: "x"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name     string
		verifier *TokenIssuer
		token    string
	}{
		{"expired", testIssuer(now.Add(2 * time.Hour)), raw},
		{"not yet valid", testIssuer(now.Add(-time.Hour)), raw},
		{"wrong audience", otherAudience, raw},
		{"wrong issuer", otherIssuer, raw},
		{"wrong secret", otherSecret, raw},
		{"garbage", testIssuer(now), "not-a-token"},
		{"alg none", testIssuer(now), unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.verifier.Verify(tt.token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
