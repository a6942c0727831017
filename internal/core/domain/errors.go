package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("not authorized")
	ErrForbidden          = errors.New("not authorized to access this task")
	ErrTaskNotFound       = errors.New("task not found")
	ErrHashing            = errors.New("password hashing failed")
)

// ValidationError reports a request that failed input validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TokenErrorKind classifies why a bearer token was rejected.
type TokenErrorKind int

const (
	TokenMalformed TokenErrorKind = iota
	TokenSignatureInvalid
	TokenExpired
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenSignatureInvalid:
		return "signature_invalid"
	case TokenExpired:
		return "expired"
	default:
		return "malformed"
	}
}

// TokenError is returned by token verification.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + e.Kind.String()
}

func (e *TokenError) Unwrap() error { return e.Err }
