package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
)

const bearerChallenge = `Bearer realm="random-word-api"`

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status of its kind. Only the public
// message reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	kind := auth.KindOf(err)
	status := auth.HTTPStatus(kind)

	if status == http.StatusUnauthorized {
		challenge := bearerChallenge
		if kind == auth.KindInvalidToken {
			challenge += `, error="invalid_token"`
		}
		w.Header().Set("WWW-Authenticate", challenge)
	}

	if kind == auth.KindInternal {
		logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		logger.Debug(r.Context(), "request rejected",
			"method", r.Method, "path", r.URL.Path, "kind", kind.String(), "status", status)
	}

	writeJSON(w, status, errorResponse{Error: auth.Message(err)})
}
