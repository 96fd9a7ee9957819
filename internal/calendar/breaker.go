package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

// NewBreaker trips after failures consecutive service-side errors and stays
// open for cooldown. Rejected input, missing events, conflicts and bad
// credentials are the caller's problem and never count against the service.
func NewBreaker(name string, failures int, cooldown time.Duration) *gobreaker.CircuitBreaker {
	if failures <= 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				planpalErrors.IsCategory(err, planpalErrors.ErrNotFound) ||
				planpalErrors.IsCategory(err, planpalErrors.ErrConflict) ||
				planpalErrors.IsCategory(err, planpalErrors.ErrInvalidInput) ||
				planpalErrors.IsCategory(err, planpalErrors.ErrUnauthenticated)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Calendar circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

type guarded struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker
}

// Guard runs every call of next through cb. One breaker is meant to be shared
// by all gateways talking to the same backend.
func Guard(next Gateway, cb *gobreaker.CircuitBreaker) Gateway {
	if cb == nil {
		return next
	}
	return &guarded{next: next, cb: cb}
}

func (g *guarded) ListEvents(ctx context.Context, from time.Time) ([]Event, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.ListEvents(ctx, from)
	})
	if err != nil {
		return nil, g.unavailable(err)
	}
	return out.([]Event), nil
}

func (g *guarded) CreateEvent(ctx context.Context, input EventInput) (Event, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.CreateEvent(ctx, input)
	})
	if err != nil {
		return Event{}, g.unavailable(err)
	}
	return out.(Event), nil
}

func (g *guarded) GetEvent(ctx context.Context, id string) (Event, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.GetEvent(ctx, id)
	})
	if err != nil {
		return Event{}, g.unavailable(err)
	}
	return out.(Event), nil
}

func (g *guarded) UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.UpdateEvent(ctx, id, patch)
	})
	if err != nil {
		return Event{}, g.unavailable(err)
	}
	return out.(Event), nil
}

func (g *guarded) DeleteEvent(ctx context.Context, id string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.DeleteEvent(ctx, id)
	})
	if err != nil {
		return g.unavailable(err)
	}
	return nil
}

func (g *guarded) unavailable(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return planpalErrors.Transient("calendar service is temporarily unavailable")
	}
	return err
}
