// Package schedule decides whether a candidate time window collides with
// existing calendar events.
package schedule

import (
	"time"

	"github.com/harunnryd/planpal/internal/calendar"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func WindowOf(e calendar.Event) Window {
	return Window{Start: e.Start, End: e.End}
}

// In returns the window expressed in loc.
func (w Window) In(loc *time.Location) Window {
	return Window{Start: w.Start.In(loc), End: w.End.In(loc)}
}

// Valid reports whether both ends are set and Start is before End.
func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.Start.Before(w.End)
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return planpalErrors.InvalidInput("start and end time are required")
	}
	if !w.Start.Before(w.End) {
		return planpalErrors.InvalidInput("start time must be before end time")
	}
	return nil
}

// Overlaps treats touching endpoints as disjoint.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// FirstConflict returns the first existing window that overlaps candidate.
// Invalid windows on either side never conflict.
func FirstConflict(candidate Window, existing []Window) (Window, bool) {
	if !candidate.Valid() {
		return Window{}, false
	}
	c := candidate.In(time.UTC)
	for _, e := range existing {
		if !e.Valid() {
			continue
		}
		if c.Overlaps(e.In(time.UTC)) {
			return e, true
		}
	}
	return Window{}, false
}

// FindConflict is FirstConflict over events. All-day events are ignored.
func FindConflict(candidate Window, events []calendar.Event) (calendar.Event, bool) {
	if !candidate.Valid() {
		return calendar.Event{}, false
	}
	for _, e := range events {
		if !e.Timed() {
			continue
		}
		if _, ok := FirstConflict(candidate, []Window{WindowOf(e)}); ok {
			return e, true
		}
	}
	return calendar.Event{}, false
}
