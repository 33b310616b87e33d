package services

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
)

const (
	MinUserNameLength = 3
	MaxUserNameLength = 50
	MinPasswordLength = 6
)

var (
	userNameMessage = fmt.Sprintf("username must be between %d and %d characters", MinUserNameLength, MaxUserNameLength)
	passwordMessage = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
)

// credentialsRequest is the shape shared by login, registration and user
// creation.
type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

// Validate runs the length rules. A failure is a KindValidation error
// naming the first offending field, username before password.
func (r credentialsRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.UserName,
			validation.Required.Error(userNameMessage),
			validation.Length(MinUserNameLength, MaxUserNameLength).Error(userNameMessage),
		),
		validation.Field(&r.Password,
			validation.Required.Error(passwordMessage),
			validation.Length(MinPasswordLength, 0).Error(passwordMessage),
		),
	)
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		for _, name := range []string{"username", "password"} {
			if fe, ok := fields[name]; ok {
				return auth.Invalid(fe.Error())
			}
		}
	}
	return auth.Internal(err)
}
