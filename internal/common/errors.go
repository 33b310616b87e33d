// Package common defines sentinel errors and small helpers shared by the
// repository, service and transport layers. Callers should match the errors
// with errors.Is.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal = errors.New("internal error")
)
