// Package models holds the persistent domain types of the server.
package models

import "time"

// User is an account able to obtain access tokens. PasswordHash is an
// Argon2id PHC string and must never leave the server.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
