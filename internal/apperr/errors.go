// Package apperr holds the error taxonomy shared by the store, service and
// HTTP layers. The HTTP layer maps each sentinel to a status code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrMalformedID  = errors.New("malformatted id")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("token missing")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrForbidden    = errors.New("operation not allowed")
)

// Error carries a client-facing message alongside one of the sentinels.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation returns an ErrValidation with a client-facing message.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns an ErrConflict with a client-facing message.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized returns an ErrUnauthorized with a custom message, used where
// "token missing" would be misleading (bad credentials, disabled account).
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// Message returns the text that should be shown to the client for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	for _, s := range []error{ErrValidation, ErrConflict, ErrMalformedID, ErrNotFound, ErrUnauthorized, ErrInvalidToken, ErrTokenExpired, ErrForbidden} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}
