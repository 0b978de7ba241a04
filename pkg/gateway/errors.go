package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes attached to APIError, derived from the HTTP status.
const (
	ErrorCodeValidation     = "validation_error"
	ErrorCodeAuthentication = "authentication_error"
	ErrorCodePermission     = "permission_denied"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeConflict       = "conflict"
	ErrorCodeRateLimit      = "rate_limit_exceeded"
	ErrorCodeServerError    = "server_error"
	ErrorCodeNetwork        = "network_error"
	ErrorCodeUnknown        = "unknown_error"
)

// APIError is the normalized failure for any backend call.
// StatusCode is 0 when no response was received at all.
type APIError struct {
	Op            string `json:"op"`
	StatusCode    int    `json:"status_code"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	OriginalError error  `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: network error: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error {
	return e.OriginalError
}

func codeForStatus(status int) string {
	switch status {
	case 0:
		return ErrorCodeNetwork
	case http.StatusBadRequest:
		return ErrorCodeValidation
	case http.StatusUnauthorized:
		return ErrorCodeAuthentication
	case http.StatusForbidden:
		return ErrorCodePermission
	case http.StatusNotFound:
		return ErrorCodeNotFound
	case http.StatusConflict:
		return ErrorCodeConflict
	case http.StatusTooManyRequests:
		return ErrorCodeRateLimit
	default:
		if status >= 500 {
			return ErrorCodeServerError
		}
		return ErrorCodeUnknown
	}
}

// newAPIError builds an APIError for an operation and HTTP status.
func newAPIError(op string, status int, message string, original error) *APIError {
	return &APIError{
		Op:            op,
		StatusCode:    status,
		Code:          codeForStatus(status),
		Message:       message,
		OriginalError: original,
	}
}

// UserMessage maps any error to the text shown to the user.
// Backend-supplied text wins for validation and conflict failures.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 0:
			// No response received at all.
			return "An unexpected error occurred."
		case http.StatusBadRequest:
			if apiErr.Message != "" {
				return apiErr.Message
			}
			return "Invalid data. Check the submitted fields."
		case http.StatusUnauthorized:
			return "Session expired. Please log in again."
		case http.StatusForbidden:
			return "You do not have permission to perform this action."
		case http.StatusNotFound:
			return "Resource not found."
		case http.StatusConflict:
			if apiErr.Message != "" {
				return apiErr.Message
			}
			return "The resource already exists."
		case http.StatusTooManyRequests:
			return "Too many requests. Try again in a few minutes."
		}
		if apiErr.StatusCode >= 500 {
			return "Server error. Try again later."
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "An unexpected error occurred."
	}
	if err != nil {
		return err.Error()
	}
	return "An unexpected error occurred."
}

// IsAuthError reports whether err is a 401 from the backend.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsValidationError reports whether err is a 400 from the backend.
func IsValidationError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

// IsNotFoundError reports whether err is a 404 from the backend.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsNetworkError reports whether no response was received at all.
func IsNetworkError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}
