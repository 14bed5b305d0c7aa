package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal          ErrorCode = "INTERNAL"
	ErrCodeInvalidFilter     ErrorCode = "INVALID_FILTER"
	ErrCodeIncompleteRange   ErrorCode = "INCOMPLETE_RANGE"
	ErrCodeInvalidRange      ErrorCode = "INVALID_RANGE"
	ErrCodeUnknownReport     ErrorCode = "UNKNOWN_REPORT"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeDataStore         ErrorCode = "DATA_STORE"
)

// Error represents a domain-level error. Field names the offending input, if any.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
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

// Is reports whether target is a domain error with the same code, so that
// detail-carrying instances match the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// PublicMessage is the text safe to hand to API clients. Store failures are
// reported opaquely so that query text never leaves the process.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	switch e.Code {
	case ErrCodeDataStore:
		return "data store unavailable"
	case ErrCodeInternal:
		return "internal error"
	}
	return e.Error()
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

// FieldError builds a validation error bound to a single input key.
func FieldError(code ErrorCode, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message}
}

// Common domain errors.
var (
	ErrRepresentativeNotFound = NewError(ErrCodeNotFound, "representative not found")
	ErrRepresentativeInactive = NewError(ErrCodeForbidden, "representative is not active")
	ErrNotRepresentative      = NewError(ErrCodeForbidden, "user is not an insurance representative")
	ErrSessionNotFound        = NewError(ErrCodeNotFound, "session not found")
	ErrDocumentNotFound       = NewError(ErrCodeNotFound, "exported document not found")
	ErrUnauthorized           = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden              = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload         = NewError(ErrCodeInvalid, "invalid payload")

	ErrInvalidFilter     = NewError(ErrCodeInvalidFilter, "invalid filter")
	ErrIncompleteRange   = NewError(ErrCodeIncompleteRange, "start_date and end_date must be supplied together")
	ErrInvalidRange      = NewError(ErrCodeInvalidRange, "start_date must not be after end_date")
	ErrUnknownReport     = NewError(ErrCodeUnknownReport, "unknown report")
	ErrUnsupportedFormat = NewError(ErrCodeUnsupportedFormat, "unsupported export format")
	ErrDataStore         = NewError(ErrCodeDataStore, "data store failure")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsFilterError reports whether err came out of filter validation.
func IsFilterError(err error) bool {
	var dErr *Error
	if !errors.As(err, &dErr) {
		return false
	}
	switch dErr.Code {
	case ErrCodeInvalidFilter, ErrCodeIncompleteRange, ErrCodeInvalidRange:
		return true
	}
	return false
}
