// Package errors provides the standardized error taxonomy of the signup service
// and its mapping onto HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
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
	ErrCodeActivityFull     ErrorCode = "ACTIVITY_FULL"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidSeed  ErrorCode = "INVALID_SEED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"

	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Detail messages surfaced to HTTP callers.
const (
	MsgActivityNotFound = "Activity not found"
	MsgAlreadySignedUp  = "Student is already signed up"
	MsgActivityFull     = "Activity is full"
	MsgRateLimited      = "Too many requests"
	MsgStoreUnavailable = "Store unavailable"
	MsgInternal         = "Internal server error"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	cause      error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches on code so errors.Is(err, &StandardError{Code: X}) works.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError is the NotFound failure of a signup or lookup.
func NewActivityNotFoundError(activityName string) *StandardError {
	return &StandardError{
		Code:       ErrCodeActivityNotFound,
		Message:    MsgActivityNotFound,
		Details:    fmt.Sprintf("no activity named %q", activityName),
		HTTPStatus: http.StatusNotFound,
		Metadata:   map[string]interface{}{"activity": activityName},
		Timestamp:  time.Now().UTC(),
	}
}

// NewAlreadySignedUpError is the Conflict raised for duplicate signups.
func NewAlreadySignedUpError(activityName, email string) *StandardError {
	return &StandardError{
		Code:       ErrCodeAlreadySignedUp,
		Message:    MsgAlreadySignedUp,
		Details:    fmt.Sprintf("%s is already in %s", email, activityName),
		HTTPStatus: http.StatusBadRequest,
		Metadata:   map[string]interface{}{"activity": activityName, "email": email},
		Timestamp:  time.Now().UTC(),
	}
}

// NewActivityFullError is the Conflict raised when the roster is at capacity.
func NewActivityFullError(activityName string, capacity int) *StandardError {
	return &StandardError{
		Code:       ErrCodeActivityFull,
		Message:    MsgActivityFull,
		Details:    fmt.Sprintf("%s has reached %d participants", activityName, capacity),
		HTTPStatus: http.StatusBadRequest,
		Metadata:   map[string]interface{}{"activity": activityName, "maxParticipants": capacity},
		Timestamp:  time.Now().UTC(),
	}
}

func NewInvalidInputError(field, message string) *StandardError {
	return &StandardError{
		Code:       ErrCodeInvalidInput,
		Message:    message,
		Details:    field,
		HTTPStatus: http.StatusUnprocessableEntity,
		Metadata:   map[string]interface{}{"field": field},
		Timestamp:  time.Now().UTC(),
	}
}

func NewInvalidSeedError(details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeInvalidSeed,
		Message:    "Invalid activity seed",
		Details:    details,
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
	}
}

func NewRateLimitedError(key string) *StandardError {
	return &StandardError{
		Code:       ErrCodeRateLimited,
		Message:    MsgRateLimited,
		Details:    key,
		HTTPStatus: http.StatusTooManyRequests,
		Timestamp:  time.Now().UTC(),
	}
}

// NewStoreUnavailableError wraps a backing-store failure.
func NewStoreUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeStoreUnavailable,
		Message:    MsgStoreUnavailable,
		Details:    fmt.Sprintf("%s: %v", operation, err),
		HTTPStatus: http.StatusServiceUnavailable,
		Metadata:   map[string]interface{}{"operation": operation},
		Timestamp:  time.Now().UTC(),
		cause:      err,
	}
}

func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:       ErrCodeInternal,
		Message:    MsgInternal,
		Details:    details,
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
		cause:      err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError extracts a StandardError from err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsNotFound reports the NotFound category.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeActivityNotFound)
}

// IsConflict reports the Conflict category: duplicate signup or full activity.
func IsConflict(err error) bool {
	return HasCode(err, ErrCodeAlreadySignedUp) || HasCode(err, ErrCodeActivityFull)
}

// HTTPStatusFor returns the status code for err; non-standard errors are 500.
func HTTPStatusFor(err error) int {
	if stdErr, ok := AsStandardError(err); ok && stdErr.HTTPStatus != 0 {
		return stdErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeActivityNotFound:
		return "NOT_FOUND"
	case code == ErrCodeAlreadySignedUp || code == ErrCodeActivityFull:
		return "CONFLICT"
	case strings.HasPrefix(codeStr, "INVALID"):
		return "VALIDATION"
	case code == ErrCodeRateLimited:
		return "THROTTLING"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	default:
		return "INTERNAL"
	}
}
