// Package errors carries the HTTP error type the admin API responds with.
package errors

import "net/http"

// HTTPError represents an HTTP error with status code and message.
type HTTPError struct {
	Code       int
	Message    string
	StatusCode int
}

// NewHTTPError returns a new HTTPError. A zero statusCode defaults to 400.
func NewHTTPError(code int, message string, statusCode int) *HTTPError {
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	return &HTTPError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewUnauthorizedHTTPError returns a new unauthorized HTTP error.
func NewUnauthorizedHTTPError() *HTTPError {
	return &HTTPError{
		Code:       401,
		Message:    "Unauthorized",
		StatusCode: http.StatusUnauthorized,
	}
}

// NewServiceUnavailableHTTPError returns a 503 error with the given message.
func NewServiceUnavailableHTTPError(message string) *HTTPError {
	return &HTTPError{
		Code:       503,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func (e *HTTPError) Error() string {
	return e.Message
}
