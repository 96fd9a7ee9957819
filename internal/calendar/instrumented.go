package calendar

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives the outcome of every gateway call.
type Observer interface {
	ObserveCalendarOperation(operation string, err error)
}

type instrumented struct {
	next     Gateway
	observer Observer
	timeout  time.Duration
}

// Instrument wraps a gateway so each call runs under its own timeout and is
// reported to observer. A nil observer only applies the timeout.
func Instrument(next Gateway, observer Observer, timeout time.Duration) Gateway {
	return &instrumented{next: next, observer: observer, timeout: timeout}
}

func (g *instrumented) ListEvents(ctx context.Context, from time.Time) ([]Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	events, err := g.next.ListEvents(ctx, from)
	g.observe("list", err)
	return events, err
}

func (g *instrumented) CreateEvent(ctx context.Context, input EventInput) (Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	e, err := g.next.CreateEvent(ctx, input)
	g.observe("create", err)
	return e, err
}

func (g *instrumented) GetEvent(ctx context.Context, id string) (Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	e, err := g.next.GetEvent(ctx, id)
	g.observe("get", err)
	return e, err
}

func (g *instrumented) UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	e, err := g.next.UpdateEvent(ctx, id, patch)
	g.observe("update", err)
	return e, err
}

func (g *instrumented) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	err := g.next.DeleteEvent(ctx, id)
	g.observe("delete", err)
	return err
}

func (g *instrumented) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *instrumented) observe(operation string, err error) {
	if err != nil {
		slog.Debug("Calendar operation failed", "operation", operation, "error", err)
	}
	if g.observer != nil {
		g.observer.ObserveCalendarOperation(operation, err)
	}
}
