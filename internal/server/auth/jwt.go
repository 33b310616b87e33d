package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var timeNow = time.Now

var errEmptySecret = errors.New("empty signing secret")

// GenerateToken signs an HS256 access token for subject, valid for
// expirationMinutes from now. Every call gets a fresh jti and session_id.
func GenerateToken(subject Identity, secret []byte, expirationMinutes int) (string, error) {
	if len(secret) == 0 {
		return "", errEmptySecret
	}
	if expirationMinutes <= 0 {
		return "", fmt.Errorf("token lifetime must be positive, got %d minutes", expirationMinutes)
	}

	now := timeNow()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject.ID,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationMinutes) * time.Minute)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserName:  subject.UserName,
		IsAdmin:   subject.IsAdmin,
		SessionID: uuid.NewString(),
		TokenType: TokenTypeAccess,
	}

	return signClaims(claims, secret)
}

// ExpirationSeconds converts a token lifetime to the expires_in value
// returned to clients.
func ExpirationSeconds(expirationMinutes int) int64 {
	return int64(expirationMinutes) * 60
}

// ValidateToken verifies signature, algorithm, issuer, audience and the
// exp/nbf/iat window of tokenString. Any failure yields ErrInvalidToken and
// the cause is dropped. token_type is left to the caller.
func ValidateToken(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// the parser checks nbf and iat only when present
	if claims.NotBefore == nil || claims.IssuedAt == nil || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func signClaims(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
