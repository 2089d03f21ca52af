// Package errors defines the typed error taxonomy shared by services and the
// HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a service error.
type Code string

const (
	CodeFetchFailed   Code = "fetch_failed"
	CodeNotFound      Code = "not_found"
	CodeValidation    Code = "validation_failed"
	CodeUnauthorized  Code = "unauthorized"
	CodeRateLimited   Code = "rate_limited"
	CodePartialFailed Code = "partial_failure"
	CodeInternal      Code = "internal"
)

// ServiceError is the error type surfaced across service boundaries. The
// HTTPStatus is what the API layer writes when the error reaches a handler.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is matches service errors by code so callers can test with errors.Is.
func (e *ServiceError) Is(target error) bool {
	var se *ServiceError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// FetchFailed wraps a backend query failure. Not retried automatically.
func FetchFailed(msg string, err error) *ServiceError {
	return &ServiceError{Code: CodeFetchFailed, Message: msg, HTTPStatus: http.StatusBadGateway, Err: err}
}

// NotFound marks a missing row. Distinct from a hard fetch failure.
func NotFound(msg string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

// Validation marks input rejected before any backend call.
func Validation(msg string) *ServiceError {
	return &ServiceError{Code: CodeValidation, Message: msg, HTTPStatus: http.StatusBadRequest}
}

// Unauthorized marks a missing or invalid credential.
func Unauthorized(msg string) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

// RateLimitExceeded marks a throttled request.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// PartialFailure marks a secondary step that failed after the primary
// operation succeeded. Logged, never surfaced to the caller.
func PartialFailure(msg string, err error) *ServiceError {
	return &ServiceError{Code: CodePartialFailed, Message: msg, HTTPStatus: http.StatusOK, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: msg, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// IsNotFound reports whether err is a not-found service error.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == CodeNotFound
}

// IsValidation reports whether err is a validation service error.
func IsValidation(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == CodeValidation
}

// HTTPStatus returns the status for err, defaulting to 500.
func HTTPStatus(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}
