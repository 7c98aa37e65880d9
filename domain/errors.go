package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")
	ErrProjectNotFound      = NewError(ErrCodeNotFound, "project not found")
	ErrNotificationNotFound = NewError(ErrCodeNotFound, "notification not found")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden            = NewError(ErrCodeForbidden, "admin role required")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
	ErrVerificationFailed   = NewError(ErrCodeForbidden, "bot verification failed")
	ErrTaskExists           = NewError(ErrCodeConflict, "task already exists")
	ErrTaskChanged          = NewError(ErrCodeConflict, "task was changed concurrently")
	ErrProjectExists        = NewError(ErrCodeConflict, "a project with this name already exists")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// CodeOf returns the classification of the outermost domain error in err's
// chain. Errors without one, including context deadlines, are INTERNAL.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code != "" {
		return dErr.Code
	}
	return ErrCodeInternal
}

// IsTransient reports whether err came from infrastructure rather than from
// a rule the caller broke. Only transient failures are worth retrying.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return CodeOf(err) == ErrCodeInternal
}
