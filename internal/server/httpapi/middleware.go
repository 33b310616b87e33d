package httpapi

import (
	"net/http"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/common"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
)

// RequireAuth rejects requests without a valid access token before next
// runs. The identity is stored in the request context.
func RequireAuth(settings SettingsProvider, logger logging.Logger) func(http.Handler) http.Handler {
	return guard(settings, logger, auth.Authenticate)
}

// RequireAdmin is RequireAuth restricted to administrators.
func RequireAdmin(settings SettingsProvider, logger logging.Logger) func(http.Handler) http.Handler {
	return guard(settings, logger, auth.AuthenticateAdmin)
}

type authenticator func(header string, present bool, secret []byte) (*auth.Identity, error)

func guard(settings SettingsProvider, logger logging.Logger, authenticate authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header, present, err := authorizationHeader(r)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			id, err := authenticate(header, present, settings.Load().Secret)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// authorizationHeader returns the single Authorization value. Repeating the
// header is malformed.
func authorizationHeader(r *http.Request) (string, bool, error) {
	values := r.Header.Values(common.AuthorizationHeaderName)
	switch len(values) {
	case 0:
		return "", false, nil
	case 1:
		return values[0], true, nil
	default:
		return "", true, auth.ErrMalformedCredential
	}
}
