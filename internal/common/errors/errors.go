// Package errors provides standardized error handling for the activities API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeActivityNotFound ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadySignedUp  ErrorCode = "ALREADY_SIGNED_UP"
	ErrCodeNotSignedUp      ErrorCode = "NOT_SIGNED_UP"
	ErrCodeActivityFull     ErrorCode = "ACTIVITY_FULL"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeSeedInvalid      ErrorCode = "SEED_INVALID"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// StandardError represents a structured application error. The Message is
// what callers of the HTTP API see as the `detail` field.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError creates an error for an unknown activity name.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySignedUpError creates an error for a duplicate signup.
func NewAlreadySignedUpError(email, activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySignedUp,
		Message:   "Student is already signed up for this activity",
		Details:   fmt.Sprintf("email: %s, activity: %s", email, activity),
		Timestamp: time.Now().UTC(),
	}
}

// NewNotSignedUpError creates an error for unregistering an absent participant.
func NewNotSignedUpError(email, activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotSignedUp,
		Message:   "Student is not signed up for this activity",
		Details:   fmt.Sprintf("email: %s, activity: %s", email, activity),
		Timestamp: time.Now().UTC(),
	}
}

// NewActivityFullError creates an error for signup against a full activity.
// Only produced when capacity enforcement is enabled.
func NewActivityFullError(activity string, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityFull,
		Message:   "Activity is already at maximum capacity",
		Details:   fmt.Sprintf("activity: %s, max_participants: %d", activity, max),
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates an error for a malformed request.
func NewValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewSeedInvalidError creates an error for a seed file that fails schema validation.
func NewSeedInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSeedInvalid,
		Message:   "Activity seed data is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates an error for a failed storage backend operation.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Activity store is unavailable",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeActivityNotFound: http.StatusNotFound,
	ErrCodeAlreadySignedUp:  http.StatusBadRequest,
	ErrCodeNotSignedUp:      http.StatusBadRequest,
	ErrCodeActivityFull:     http.StatusBadRequest,
	ErrCodeValidationFailed: http.StatusBadRequest,
	ErrCodeSeedInvalid:      http.StatusInternalServerError,
	ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus returns the HTTP status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, exists := HTTPStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandard unwraps err into a StandardError if possible.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code == code
	}
	return false
}

// IsClientError reports whether the error maps to a 4xx status.
func IsClientError(err error) bool {
	if stdErr, ok := AsStandard(err); ok {
		status := HTTPStatus(stdErr.Code)
		return status >= 400 && status < 500
	}
	return false
}
