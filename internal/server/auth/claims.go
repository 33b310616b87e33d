// Package auth issues and validates access tokens, extracts the caller's
// identity from a bearer credential and enforces the admin role. It is
// transport agnostic; the HTTP and gRPC layers adapt it.
package auth

import "github.com/golang-jwt/jwt/v5"

const (
	// Issuer is the required "iss" claim.
	Issuer = "random-word-api"
	// Audience is the required "aud" claim.
	Audience = "random-word-api-users"
	// TokenTypeAccess is the only token_type accepted for resource access.
	TokenTypeAccess = "access"
)

// Claims is the signed token payload. The registered part carries iss, aud,
// sub (user id), exp, nbf, iat and jti.
type Claims struct {
	jwt.RegisteredClaims
	UserName  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	SessionID string `json:"session_id"`
	TokenType string `json:"token_type"`
}

// Identity is the authenticated caller derived from valid claims.
type Identity struct {
	ID       string
	UserName string
	IsAdmin  bool
}

func identityFromClaims(c *Claims) *Identity {
	return &Identity{ID: c.Subject, UserName: c.UserName, IsAdmin: c.IsAdmin}
}
