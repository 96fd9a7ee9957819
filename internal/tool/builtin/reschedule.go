package builtin

import (
	"context"
	"fmt"

	"github.com/harunnryd/planpal/internal/calendar"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/schedule"
	toolcore "github.com/harunnryd/planpal/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("reschedule_event", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &RescheduleTool{}, nil
	})
}

// RescheduleTool moves an existing event. The new slot is not checked for
// conflicts.
type RescheduleTool struct{}

func (t *RescheduleTool) Name() string {
	return "reschedule_event"
}

func (t *RescheduleTool) Description() string {
	return "Reschedules an event. Input format: 'Event ID, New Start Time, New End Time'. Times can be natural language (e.g. 'tomorrow 6pm')."
}

func (t *RescheduleTool) Schema() toolcore.Schema {
	return toolcore.Schema{
		Format: "Event ID, New Start Time, New End Time",
		Fields: []toolcore.Field{
			{Name: "event_id", Description: "ID of the event to move", Required: true},
			{Name: "start", Description: "New start time", Required: true},
			{Name: "end", Description: "New end time or length", Required: true},
		},
	}
}

func (t *RescheduleTool) Execute(ctx context.Context, session *toolcore.Session, args toolcore.Args) (string, error) {
	loc := session.TimeZone()

	start, end, err := session.Resolver.ResolveRange(args.Get("start"), args.Get("end"), session.CurrentTime())
	if err != nil {
		return "", err
	}
	if err := (schedule.Window{Start: start, End: end}).Validate(); err != nil {
		return "", err
	}

	id := args.Get("event_id")
	if _, err := session.Gateway.GetEvent(ctx, id); err != nil {
		return "", planpalErrors.Wrap(err, "failed to reschedule event")
	}

	updated, err := session.Gateway.UpdateEvent(ctx, id, calendar.EventPatch{
		Start:    start,
		End:      end,
		TimeZone: loc.String(),
	})
	if err != nil {
		return "", planpalErrors.Wrap(err, "failed to reschedule event")
	}

	msg := fmt.Sprintf("Event '%s' rescheduled to %s.", titleOf(updated.Summary), formatRange(updated.Start, updated.End, loc))
	if updated.Link != "" {
		msg += "\nView event: " + updated.Link
	}
	return msg, nil
}
