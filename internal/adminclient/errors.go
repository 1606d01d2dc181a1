package adminclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
)

// APIError is a failed admin API call. Kind is the domain sentinel the
// status maps to, so errors.Is(err, domain.ErrUnauthorized) and friends work
// on the client side too.
type APIError struct {
	StatusCode int
	Message    string
	Transient  bool
	Kind       error
	Cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, "admin api error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *APIError) Unwrap() []error {
	if e == nil {
		return nil
	}

	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// IsTransient reports whether a read should be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// IsUnauthorized reports whether the caller must log in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}

func statusError(statusCode int, message string) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    message,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		apiErr.Kind = domain.ErrUnauthorized
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		apiErr.Kind = domain.ErrValidation
	case statusCode == http.StatusNotFound:
		apiErr.Kind = domain.ErrNotFound
	case statusCode == http.StatusConflict:
		apiErr.Kind = domain.ErrConflict
	case statusCode == http.StatusTooManyRequests:
		apiErr.Kind = domain.ErrRateLimited
		apiErr.Transient = true
	case statusCode >= http.StatusInternalServerError && statusCode <= 599:
		apiErr.Transient = true
	}

	return apiErr
}

func transportError(err error) *APIError {
	return &APIError{
		Message:   "admin api request failed",
		Transient: !errors.Is(err, context.Canceled),
		Cause:     err,
	}
}
