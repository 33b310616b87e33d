// Package users stores accounts. Usernames are unique; a duplicate insert
// fails with common.ErrorAlreadyExists and a lookup miss with
// common.ErrorNotFound.
package users

import (
	"context"
	"time"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, username, passwordHash string, isAdmin bool) (*models.User, error)
	GetUserByLogin(ctx context.Context, username string) (*models.User, error)
}

var (
	newID   = uuid.NewString
	timeNow = func() time.Time { return time.Now().UTC() }
)

func newUser(username, passwordHash string, isAdmin bool) *models.User {
	now := timeNow()
	return &models.User{
		ID:           newID(),
		UserName:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
