package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

// MemoryGateway keeps events in process. It backs offline runs and tests.
type MemoryGateway struct {
	mu     sync.RWMutex
	events map[string]Event
}

func NewMemoryGateway(seed ...Event) *MemoryGateway {
	g := &MemoryGateway{events: make(map[string]Event, len(seed))}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = newEventID()
		}
		if e.Link == "" {
			e.Link = memoryLink(e.ID)
		}
		g.events[e.ID] = e
	}
	return g
}

func (g *MemoryGateway) ListEvents(ctx context.Context, from time.Time) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Event, 0, len(g.events))
	for _, e := range g.events {
		if e.End.After(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (g *MemoryGateway) CreateEvent(ctx context.Context, input EventInput) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if !input.Start.Before(input.End) {
		return Event{}, planpalErrors.InvalidInput("event start must be before end")
	}

	e := Event{
		ID:          newEventID(),
		Summary:     strings.TrimSpace(input.Summary),
		Description: input.Description,
		Start:       inZone(input.Start, input.TimeZone),
		End:         inZone(input.End, input.TimeZone),
	}
	e.Link = memoryLink(e.ID)

	g.mu.Lock()
	g.events[e.ID] = e
	g.mu.Unlock()
	return e, nil
}

func (g *MemoryGateway) GetEvent(ctx context.Context, id string) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.events[id]
	if !ok {
		return Event{}, planpalErrors.NotFound(fmt.Sprintf("event %q not found", id))
	}
	return e, nil
}

func (g *MemoryGateway) UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if !patch.Start.Before(patch.End) {
		return Event{}, planpalErrors.InvalidInput("event start must be before end")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.events[id]
	if !ok {
		return Event{}, planpalErrors.NotFound(fmt.Sprintf("event %q not found", id))
	}
	e.Start = inZone(patch.Start, patch.TimeZone)
	e.End = inZone(patch.End, patch.TimeZone)
	e.AllDay = false
	g.events[id] = e
	return e, nil
}

func (g *MemoryGateway) DeleteEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.events[id]; !ok {
		return planpalErrors.NotFound(fmt.Sprintf("event %q not found", id))
	}
	delete(g.events, id)
	return nil
}

func newEventID() string {
	return strings.ToLower(ulid.Make().String())
}

func memoryLink(id string) string {
	return "memory://events/" + id
}

// inZone keeps t in its own location when name is empty or unknown.
func inZone(t time.Time, name string) time.Time {
	if name == "" {
		return t
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return t
	}
	return t.In(loc)
}
