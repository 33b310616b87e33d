package auth

import (
	"strings"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/common"
)

// Authenticate turns the raw authorization value of a request into an
// Identity. present is false when the request carried no authorization
// value at all. Checks run in a fixed order: presence, "Bearer " form,
// token validity, then token_type.
func Authenticate(header string, present bool, secret []byte) (*Identity, error) {
	if !present {
		return nil, ErrMissingCredential
	}

	token, ok := bearerToken(header)
	if !ok {
		return nil, ErrMalformedCredential
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}

	return identityFromClaims(claims), nil
}

// RequireAdmin allows only administrators through.
func RequireAdmin(id *Identity) error {
	if id == nil {
		return ErrMissingCredential
	}
	if !id.IsAdmin {
		return ErrInsufficientPrivilege
	}
	return nil
}

// AuthenticateAdmin is Authenticate followed by RequireAdmin. Extraction
// failures are returned unchanged.
func AuthenticateAdmin(header string, present bool, secret []byte) (*Identity, error) {
	id, err := Authenticate(header, present, secret)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(id); err != nil {
		return nil, err
	}
	return id, nil
}

func bearerToken(header string) (string, bool) {
	if !isVisibleASCII(header) {
		return "", false
	}
	return strings.CutPrefix(header, common.BearerPrefix)
}

// isVisibleASCII accepts what an HTTP header value may hold as text:
// printable ASCII and spaces.
func isVisibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
