package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr struct{ code int }

func (e statusErr) Error() string   { return fmt.Sprintf("googleapi: Error %d", e.code) }
func (e statusErr) HTTPStatus() int { return e.code }

func TestMapError_HTTPStatus(t *testing.T) {
	m := NewDefaultErrorMapper()

	cases := map[int]error{
		401: ErrUnauthenticated,
		403: ErrPermissionDenied,
		404: ErrNotFound,
		410: ErrNotFound,
		409: ErrConflict,
		400: ErrInvalidInput,
		429: ErrTransient,
		503: ErrTransient,
	}
	for code, want := range cases {
		got := m.MapError(statusErr{code: code})
		assert.ErrorIs(t, got, want, "status %d", code)
	}
}

func TestMapError_KeepsExistingCategory(t *testing.T) {
	m := NewDefaultErrorMapper()
	original := Conflict("slot taken")
	assert.Same(t, original, m.MapError(original))
}

func TestMapError_ContextErrors(t *testing.T) {
	m := NewDefaultErrorMapper()

	assert.ErrorIs(t, m.MapError(context.DeadlineExceeded), ErrTransient)
	assert.ErrorIs(t, m.MapError(fmt.Errorf("call: %w", context.Canceled)), context.Canceled)
}

func TestMapError_MessageHeuristics(t *testing.T) {
	m := NewDefaultErrorMapper()

	assert.ErrorIs(t, m.MapError(errors.New("oauth2: invalid_grant")), ErrUnauthenticated)
	assert.ErrorIs(t, m.MapError(errors.New("event does not exist")), ErrNotFound)
	assert.ErrorIs(t, m.MapError(errors.New("connection reset by peer")), ErrTransient)
	assert.ErrorIs(t, m.MapError(errors.New("boom")), ErrInternal)
}

func TestCategory(t *testing.T) {
	m := NewDefaultErrorMapper()

	assert.Equal(t, "", m.Category(nil))
	assert.Equal(t, "ErrInvalidModelOutput", m.Category(InvalidModelOutput("unknown tool")))
	assert.Equal(t, "Unknown", m.Category(errors.New("plain")))
}

func TestMessage_StripsCategorySuffix(t *testing.T) {
	assert.Equal(t, "couldn't parse start time", Message(InvalidInput("couldn't parse start time")))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "", Message(nil))
}
