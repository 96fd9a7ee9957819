package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrInvalidInput - malformed tool arguments or unparseable times (reported to the user verbatim)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - event or model not found
	ErrNotFound = errors.New("not found")

	// ErrConflict - requested slot overlaps an existing event (booking refused, not a fault)
	ErrConflict = errors.New("conflict")

	// ErrPermissionDenied - calendar identity lacks access to the calendar
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthenticated - credential missing, expired or rejected (fatal to the turn)
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTransient - timeout, rate limit or network failure
	ErrTransient = errors.New("transient error")

	// ErrInvalidModelOutput - model selected an unknown tool or sent unparseable arguments
	ErrInvalidModelOutput = errors.New("invalid model output")

	// ErrInternal - anything else
	ErrInternal = errors.New("internal error")
)
