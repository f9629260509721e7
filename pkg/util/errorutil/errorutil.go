package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API consumers.
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeStorageRead          = "STORAGE_READ_FAILED"
	CodeStorageWrite         = "STORAGE_WRITE_FAILED"
	CodeStorageQuotaExceeded = "STORAGE_QUOTA_EXCEEDED"
	CodeRateLimited          = "RATE_LIMITED"
	CodeUnknown              = "UNKNOWN_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewStorageReadError(key string, err error) error {
	return &DomainError{
		Code:       CodeStorageRead,
		Message:    fmt.Sprintf("failed to read %q from storage", key),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"key": key},
		Err:        err,
	}
}

func NewStorageWriteError(key string, err error) error {
	return &DomainError{
		Code:       CodeStorageWrite,
		Message:    fmt.Sprintf("failed to write %q to storage", key),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"key": key},
		Err:        err,
	}
}

// NewQuotaExceeded reports a write rejected by the store's size ceiling.
// The previous value under key is left in place.
func NewQuotaExceeded(key string, err error) error {
	return &DomainError{
		Code:       CodeStorageQuotaExceeded,
		Message:    "storage quota exceeded",
		HTTPStatus: http.StatusInsufficientStorage,
		Details:    map[string]any{"key": key},
		Err:        err,
	}
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Wrap returns err as a DomainError. Errors that are not already typed
// become UNKNOWN_ERROR carrying message so callers can always render
// a human readable text.
func Wrap(err error, message string) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if message == "" {
		message = err.Error()
	}
	return &DomainError{
		Code:       CodeUnknown,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
