package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes form the closed set of failure kinds a turn can produce.
// Callers and tests branch on the code, never on the message text.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeCharacterNotFound = "CHARACTER_NOT_FOUND"
	CodeUpstream          = "UPSTREAM_ERROR"
	CodePersistence       = "PERSISTENCE_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError is an application error carrying the HTTP status it maps to.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError reports a request with missing or empty fields.
func NewValidationError(message string) *AppError {
	return NewError(http.StatusBadRequest, CodeValidation, message)
}

// NewCharacterNotFoundError reports an unknown character name. The original
// service answered 500 rather than 404 here; that contract is kept.
func NewCharacterNotFoundError(name string) *AppError {
	return NewError(http.StatusInternalServerError, CodeCharacterNotFound,
		fmt.Sprintf("character %q has no description on file", name))
}

// NewUpstreamError wraps a completion vendor failure.
func NewUpstreamError(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeUpstream,
		Message:    err.Error(),
		Err:        err,
	}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodePersistence,
		Message:    err.Error(),
		Err:        err,
	}
}

// FromError converts a standard error to an AppError. If the error is
// already an AppError it is returned as-is; otherwise it is wrapped as an
// internal server error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    err.Error(),
		Err:        err,
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// GetStatusCode extracts the HTTP status code, defaulting to 500.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
