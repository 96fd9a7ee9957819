package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorMapper maps external errors to the PlanPal error taxonomy
type ErrorMapper interface {
	MapError(err error) error
	Category(err error) string
}

// HTTPStatusError is implemented by provider errors that carry an HTTP status code.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// DefaultErrorMapper implements the PlanPal error taxonomy mapping
type DefaultErrorMapper struct{}

// NewDefaultErrorMapper creates a new error mapper
func NewDefaultErrorMapper() *DefaultErrorMapper {
	return &DefaultErrorMapper{}
}

// MapError maps external errors to PlanPal error categories.
// Errors that already carry a category are returned unchanged.
func (m *DefaultErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}

	if m.Category(err) != "Unknown" {
		return err
	}

	// Propagate context cancellation as-is
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", ErrTransient)
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		if mapped := mapHTTPStatus(statusErr.HTTPStatus(), err); mapped != nil {
			return mapped
		}
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "invalid_grant"), strings.Contains(errStr, "unauthenticated"),
		strings.Contains(errStr, "invalid credentials"), strings.Contains(errStr, "unauthorized"):
		return fmt.Errorf("%s: %w", err.Error(), ErrUnauthenticated)

	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "does not exist"):
		return fmt.Errorf("%s: %w", err.Error(), ErrNotFound)

	case strings.Contains(errStr, "permission denied"), strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("%s: %w", err.Error(), ErrPermissionDenied)

	case strings.Contains(errStr, "rate limit"), strings.Contains(errStr, "quota"), strings.Contains(errStr, "too many requests"):
		return fmt.Errorf("rate limited: %w", ErrTransient)

	case strings.Contains(errStr, "invalid input"), strings.Contains(errStr, "invalid request"), strings.Contains(errStr, "bad request"):
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidInput)

	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return fmt.Errorf("request timeout: %w", ErrTransient)

	case strings.Contains(errStr, "network"), strings.Contains(errStr, "connection"), strings.Contains(errStr, "unreachable"):
		return fmt.Errorf("network error: %w", ErrTransient)

	case strings.Contains(errStr, "conflict"), strings.Contains(errStr, "already exists"):
		return fmt.Errorf("%s: %w", err.Error(), ErrConflict)

	default:
		return fmt.Errorf("%s: %w", err.Error(), ErrInternal)
	}
}

func mapHTTPStatus(status int, err error) error {
	switch {
	case status == 401:
		return fmt.Errorf("%s: %w", err.Error(), ErrUnauthenticated)
	case status == 403:
		return fmt.Errorf("%s: %w", err.Error(), ErrPermissionDenied)
	case status == 404, status == 410:
		return fmt.Errorf("%s: %w", err.Error(), ErrNotFound)
	case status == 409:
		return fmt.Errorf("%s: %w", err.Error(), ErrConflict)
	case status == 400:
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidInput)
	case status == 429, status >= 500:
		return fmt.Errorf("%s: %w", err.Error(), ErrTransient)
	}
	return nil
}

// Category returns the PlanPal error category for an error
func (m *DefaultErrorMapper) Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	case errors.Is(err, ErrConflict):
		return "ErrConflict"
	case errors.Is(err, ErrPermissionDenied):
		return "ErrPermissionDenied"
	case errors.Is(err, ErrUnauthenticated):
		return "ErrUnauthenticated"
	case errors.Is(err, ErrTransient):
		return "ErrTransient"
	case errors.Is(err, ErrInvalidModelOutput):
		return "ErrInvalidModelOutput"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory wraps an error with a specific category, keeping the cause text
func WrapWithCategory(err error, message string, category error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %v: %w", message, err, category)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// NotFound wraps error as not found
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps error as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Conflict wraps error as conflict
func Conflict(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConflict)
}

// Unauthenticated wraps error as unauthenticated
func Unauthenticated(message string) error {
	return fmt.Errorf("%s: %w", message, ErrUnauthenticated)
}

// Transient wraps error as transient
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps error as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// InvalidModelOutput wraps error as invalid model output
func InvalidModelOutput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidModelOutput)
}

// Message strips the trailing category suffix so the text can be shown to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{
		ErrInvalidInput, ErrNotFound, ErrConflict, ErrPermissionDenied,
		ErrUnauthenticated, ErrTransient, ErrInvalidModelOutput, ErrInternal,
	} {
		suffix := ": " + sentinel.Error()
		if errors.Is(err, sentinel) && strings.HasSuffix(msg, suffix) {
			return strings.TrimSuffix(msg, suffix)
		}
	}
	return msg
}
