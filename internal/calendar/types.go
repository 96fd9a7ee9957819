// Package calendar defines the calendar gateway used by the scheduling tools.
package calendar

import (
	"context"
	"time"
)

// Event is a request-scoped copy of a remote calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	// AllDay events only carry a date and never take part in conflict checks.
	AllDay bool
	Link   string
}

// Timed reports whether the event has a usable start and end instant.
func (e Event) Timed() bool {
	return !e.AllDay && !e.Start.IsZero() && !e.End.IsZero() && e.Start.Before(e.End)
}

type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// EventPatch overwrites the time range of an existing event.
type EventPatch struct {
	Start    time.Time
	End      time.Time
	TimeZone string
}

// Gateway is bound to one calendar identity at construction.
type Gateway interface {
	// ListEvents returns every event ending after from, ordered by start time.
	ListEvents(ctx context.Context, from time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, input EventInput) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
