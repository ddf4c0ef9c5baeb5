package lms

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidEmail is returned when a profile email is missing or malformed
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrEnrollmentTermNotFound is returned when no enrollment term matches a SIS term id
	ErrEnrollmentTermNotFound = errors.New("enrollment term not found")
)

// HTTPError is a non-2xx response from the LMS
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
}

// IsNotFound reports whether err is an LMS 404
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

func retryable(method string, status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= http.StatusInternalServerError && idempotent(method)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
