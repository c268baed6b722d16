package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers and for retry decisions.
type Kind string

const (
	// KindValidation indicates bad input or a business-rule violation
	KindValidation Kind = "VALIDATION"
	// KindNotFound indicates the entity is absent
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict indicates a concurrent writer won the race
	KindConflict Kind = "CONFLICT"
	// KindFailure indicates a transient infrastructure failure
	KindFailure Kind = "FAILURE"
	// KindUnexpected indicates an unanticipated fault
	KindUnexpected Kind = "UNEXPECTED"
)

// AppError represents an application error
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by code, so sentinels survive WithMessage.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code != "" && other.Code == e.Code && other.Kind == e.Kind
}

// WithMessage returns a copy of the error carrying a more specific message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// New creates a new application error
func New(kind Kind, code, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an application error
func Wrap(kind Kind, code, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error
func Validation(code, message string) *AppError {
	return New(KindValidation, code, message)
}

// NotFound creates a not found error
func NotFound(code, message string) *AppError {
	return New(KindNotFound, code, message)
}

// Conflict creates a conflict error
func Conflict(code, message string) *AppError {
	return New(KindConflict, code, message)
}

// Failure wraps a transient infrastructure error
func Failure(code, message string, err error) *AppError {
	return Wrap(KindFailure, code, message, err)
}

// Unexpected wraps a fault nobody anticipated
func Unexpected(code, message string, err error) *AppError {
	return Wrap(KindUnexpected, code, message, err)
}

// KindOf returns the kind of err. Untyped errors are KindUnexpected,
// context cancellation is reported as KindFailure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindFailure
	}
	return KindUnexpected
}

// CodeOf returns the stable code of err, or "" for untyped errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return isKind(err, KindConflict)
}

// IsFailure checks if an error is a transient failure
func IsFailure(err error) bool {
	return isKind(err, KindFailure)
}

// IsUnexpected checks if an error is an unexpected fault
func IsUnexpected(err error) bool {
	return isKind(err, KindUnexpected)
}

// Retryable reports whether repeating the operation might succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindValidation, KindNotFound:
		return false
	default:
		return true
	}
}

func isKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// IsDuplicateError checks if an error is a duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "duplicate entry")
}
