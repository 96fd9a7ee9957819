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
	toolcore.RegisterBuiltin("book_meeting", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &BookTool{}, nil
	})
}

// BookTool creates an event unless the slot overlaps an existing one.
type BookTool struct{}

func (t *BookTool) Name() string {
	return "book_meeting"
}

func (t *BookTool) Description() string {
	return "Books a meeting. Input format: 'Summary, Start Time, End Time'. Times may be natural language such as 'tomorrow 4pm' or a length such as 'for one hour'. Never books over an existing event; if the slot is occupied, tell the user."
}

func (t *BookTool) Schema() toolcore.Schema {
	return toolcore.Schema{
		Format: "Summary, Start Time, End Time",
		Fields: []toolcore.Field{
			{Name: "summary", Description: "Title of the meeting", Required: true, Free: true},
			{Name: "start", Description: "Start time, e.g. 'tomorrow at 4pm'", Required: true},
			{Name: "end", Description: "End time or length, e.g. '5pm' or 'for one hour'", Required: true},
		},
	}
}

func (t *BookTool) Execute(ctx context.Context, session *toolcore.Session, args toolcore.Args) (string, error) {
	loc := session.TimeZone()

	start, end, err := session.Resolver.ResolveRange(args.Get("start"), args.Get("end"), session.CurrentTime())
	if err != nil {
		return "", err
	}
	window := schedule.Window{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return "", err
	}

	// Only events ending after the candidate start can overlap it.
	existing, err := session.Gateway.ListEvents(ctx, start)
	if err != nil {
		return "", planpalErrors.Wrap(err, "failed to check existing events")
	}
	if blocking, ok := schedule.FindConflict(window, existing); ok {
		return "", planpalErrors.Conflict(fmt.Sprintf(
			"Cannot book: the slot conflicts with the existing event '%s' from %s. Please choose a different time.",
			titleOf(blocking.Summary), formatRange(blocking.Start, blocking.End, loc)))
	}

	created, err := session.Gateway.CreateEvent(ctx, calendar.EventInput{
		Summary:  args.Get("summary"),
		Start:    start,
		End:      end,
		TimeZone: loc.String(),
	})
	if err != nil {
		return "", planpalErrors.Wrap(err, "failed to book meeting")
	}

	msg := fmt.Sprintf("Meeting '%s' booked from %s (ID: %s).", titleOf(created.Summary), formatRange(created.Start, created.End, loc), created.ID)
	if created.Link != "" {
		msg += "\nView event: " + created.Link
	}
	return msg, nil
}
