package auth

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies auth failures. The set is closed; transports map each
// kind to a status with HTTPStatus and GRPCCode.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingCredential
	KindMalformedCredential
	KindInvalidToken
	KindInvalidCredentials
	KindInsufficientPrivilege
	KindValidation
	KindUsernameExists
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindMalformedCredential:
		return "malformed_credential"
	case KindInvalidToken:
		return "invalid_token"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInsufficientPrivilege:
		return "insufficient_privilege"
	case KindValidation:
		return "validation"
	case KindUsernameExists:
		return "username_exists"
	default:
		return "internal"
	}
}

// Error is an auth failure of a given Kind. Err keeps the cause for server
// logs; it is never part of Error(). Detail is a client-safe message and is
// only set for validation failures.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return PublicMessage(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrInvalidToken)
// holds for every invalid-token failure regardless of cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingCredential     = &Error{Kind: KindMissingCredential}
	ErrMalformedCredential   = &Error{Kind: KindMalformedCredential}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials}
	ErrInsufficientPrivilege = &Error{Kind: KindInsufficientPrivilege}
	ErrUsernameExists        = &Error{Kind: KindUsernameExists}
	ErrInternal              = &Error{Kind: KindInternal}
)

// Internal wraps err as a KindInternal failure.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Err: err}
}

// Invalid reports a request that failed shape validation.
func Invalid(detail string) error {
	return &Error{Kind: KindValidation, Detail: detail}
}

// KindOf returns the Kind carried by err. Errors that are not *Error are
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the text that may be shown to a client for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return PublicMessage(KindInternal)
}

// PublicMessage is the generic client-facing text for k.
func PublicMessage(k Kind) string {
	switch k {
	case KindMissingCredential:
		return "missing authorization token"
	case KindMalformedCredential:
		return "invalid authorization header"
	case KindInvalidToken:
		return "invalid or expired token"
	case KindInvalidCredentials:
		return "invalid username or password"
	case KindInsufficientPrivilege:
		return "admin privileges required"
	case KindValidation:
		return "invalid request"
	case KindUsernameExists:
		return "username already exists"
	default:
		return "internal server error"
	}
}

// HTTPStatus maps k to a response status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindMissingCredential, KindMalformedCredential, KindInvalidToken, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindInsufficientPrivilege:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindUsernameExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps k to a gRPC status code.
func GRPCCode(k Kind) codes.Code {
	switch k {
	case KindMissingCredential, KindMalformedCredential, KindInvalidToken, KindInvalidCredentials:
		return codes.Unauthenticated
	case KindInsufficientPrivilege:
		return codes.PermissionDenied
	case KindValidation:
		return codes.InvalidArgument
	case KindUsernameExists:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}
