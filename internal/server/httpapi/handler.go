package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type identityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

var errBadBody = auth.Invalid("request body must be a JSON object")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func (s *HTTPServer) alive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *HTTPServer) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "database": "connected"})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	resp, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	resp, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, s.logger, auth.ErrMissingCredential)
		return
	}

	writeJSON(w, http.StatusOK, identityResponse{ID: id.ID, Username: id.UserName, IsAdmin: id.IsAdmin})
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	u, err := s.auth.CreateUser(r.Context(), req.Username, req.Password, req.IsAdmin)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if caller, ok := auth.IdentityFromContext(r.Context()); ok {
		s.logger.Info(r.Context(), "user created by admin", "admin_id", caller.ID, "user_id", u.ID, "is_admin", u.IsAdmin)
	}

	writeJSON(w, http.StatusCreated, newUserResponse(u))
}
