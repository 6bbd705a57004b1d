package provider

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for provider calls.
type ErrorCategory string

const (
	// ErrorUnavailable covers network failures, 5xx responses and an open breaker.
	ErrorUnavailable ErrorCategory = "provider_unavailable"

	// ErrorTimeout indicates the provider took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorAuthentication indicates a rejected API token.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorNotFound indicates the requested subject, check or report does not exist.
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorBadData indicates the provider rejected our payload or returned
	// something we cannot decode.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInvalidRequest indicates a precondition failed before any call was made.
	ErrorInvalidRequest ErrorCategory = "invalid_request"

	ErrorInternal ErrorCategory = "internal"
)

// Error is the tagged failure returned by every provider operation.
type Error struct {
	Category   ErrorCategory
	Op         string
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized provider error.
func NewError(category ErrorCategory, op, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Op:         op,
		Message:    message,
		Underlying: underlying,
		Retryable: category == ErrorUnavailable ||
			category == ErrorTimeout ||
			category == ErrorRateLimited,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category, defaulting to ErrorInternal.
func GetCategory(err error) ErrorCategory {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// categoryForStatus maps an HTTP status from the provider onto the taxonomy.
func categoryForStatus(code int) ErrorCategory {
	switch {
	case code == 401 || code == 403:
		return ErrorAuthentication
	case code == 404:
		return ErrorNotFound
	case code == 408:
		return ErrorTimeout
	case code == 429:
		return ErrorRateLimited
	case code >= 500:
		return ErrorUnavailable
	case code >= 400:
		return ErrorBadData
	default:
		return ErrorInternal
	}
}
