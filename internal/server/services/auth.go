// Package services contains the server-side business logic. AuthService
// implements login, self-registration and administrative user creation on
// top of the user store, the password hasher and the token issuer.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/common"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/cryptox"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/dbx"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/models"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/repositories/repomanager"
)

// dummyPassword is hashed once and verified against on logins for unknown
// users, so that both failure paths cost one Argon2 derivation.
const dummyPassword = "random-word-api-dummy-password"

// TokenResponse is returned by a successful login or registration.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
}

// SettingsProvider yields the current signing secret and token lifetime.
type SettingsProvider interface {
	Load() config.Settings
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	settings    SettingsProvider
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, settings SettingsProvider, l logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		settings:    settings,
		logger:      l.With("module", "auth_service"),
	}
}

// Login checks the credentials and issues an access token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	if err := (credentialsRequest{UserName: username, Password: password}).Validate(); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerification(ctx, password)
			s.logger.Info(ctx, "login failed")
			return nil, auth.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, auth.Internal(err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, cryptox.ErrMalformedHash) {
			s.logger.Error(ctx, "stored password hash is malformed", "user_id", user.ID, "error", err)
		} else {
			s.logger.Warn(ctx, "password verification aborted", "user_id", user.ID, "error", err)
		}
		return nil, auth.Internal(err)
	}
	if !ok {
		s.logger.Info(ctx, "login failed", "user_id", user.ID)
		return nil, auth.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.logger.Info(ctx, "password hash uses outdated parameters", "user_id", user.ID)
	}

	return s.issue(ctx, user)
}

// Register creates a regular (non-admin) account and logs it in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.createUser(ctx, username, password, false)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// CreateUser creates an account that may be an administrator. Callers must
// have passed the admin guard.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	return s.createUser(ctx, username, password, isAdmin)
}

func (s *AuthService) createUser(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	if err := (credentialsRequest{UserName: username, Password: password}).Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, auth.Internal(err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByLogin(ctx, username)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, username, hash, isAdmin)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, auth.ErrUsernameExists
		}
		s.logger.Error(ctx, "user creation failed", "error", err)
		return nil, auth.Internal(err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "is_admin", user.IsAdmin)
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*TokenResponse, error) {
	settings := s.settings.Load()

	subject := auth.Identity{ID: user.ID, UserName: user.UserName, IsAdmin: user.IsAdmin}
	token, err := auth.GenerateToken(subject, settings.Secret, settings.TokenLifetimeMinutes)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "user_id", user.ID, "error", err)
		return nil, auth.Internal(err)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresIn: auth.ExpirationSeconds(settings.TokenLifetimeMinutes),
	}, nil
}

// burnVerification spends the same work as a real verification. Its result
// is irrelevant.
func (s *AuthService) burnVerification(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), dummyPassword)
		if err != nil {
			s.logger.Warn(ctx, "dummy hash unavailable", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
	}
}
