package domain

import "time"

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   string
	Username  string
	Email     string
	TokenID   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}
