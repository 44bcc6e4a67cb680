package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

const defaultTokenTTL = time.Hour

// TokenConfig holds the signing parameters of issued tokens.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	// Clock overrides time.Now; used by tests.
	Clock func() time.Time
}

type tokenClaims struct {
	Username string `json:"unique_name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

var (
	_ ports.TokenIssuer   = (*TokenIssuer)(nil)
	_ ports.TokenVerifier = (*TokenIssuer)(nil)
)

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      now,
	}
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue builds a signed token for user. Only the jti and the timestamps vary
// between two calls for the same user.
func (t *TokenIssuer) Issue(user *domain.User) (string, error) {
	if len(t.secret) == 0 {
		return "", domain.ErrSigningKeyMissing
	}

	now := t.now().UTC()
	claims := tokenClaims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	if t.audience != "" {
		claims.Audience = jwt.ClaimStrings{t.audience}
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and the validity window.
func (t *TokenIssuer) Verify(raw string) (*domain.TokenClaims, error) {
	if len(t.secret) == 0 {
		return nil, domain.ErrSigningKeyMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	if t.audience != "" {
		opts = append(opts, jwt.WithAudience(t.audience))
	}

	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or token id", domain.ErrInvalidToken)
	}

	return &domain.TokenClaims{
		Subject:   claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		TokenID:   claims.ID,
		Issuer:    claims.Issuer,
		Audience:  claims.Audience,
		IssuedAt:  numericTime(claims.IssuedAt),
		NotBefore: numericTime(claims.NotBefore),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time.UTC()
}
