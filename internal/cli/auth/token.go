package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the CLI can read from a bearer token without the
// server's key. Nothing here is verified.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Role      string     `json:"role,omitempty" yaml:"role,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// Expired reports whether the token carries an expiry before now
func (i *TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// InspectToken decodes the claims of a JWT bearer token without verifying
// its signature. Opaque (non-JWT) tokens return an error.
func InspectToken(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	info := &TokenInfo{}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}

	return info, nil
}
