package builtin

import (
	"context"
	"fmt"
	"strings"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	toolcore "github.com/harunnryd/planpal/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("check_availability", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &AvailabilityTool{}, nil
	})
}

// AvailabilityTool lists upcoming events grouped by day.
type AvailabilityTool struct{}

func (t *AvailabilityTool) Name() string {
	return "check_availability"
}

func (t *AvailabilityTool) Description() string {
	return "Returns the upcoming events on the user's calendar with their IDs, grouped by day. Takes no input."
}

func (t *AvailabilityTool) Schema() toolcore.Schema {
	return toolcore.Schema{}
}

func (t *AvailabilityTool) Execute(ctx context.Context, session *toolcore.Session, args toolcore.Args) (string, error) {
	_ = args

	events, err := session.Gateway.ListEvents(ctx, session.CurrentTime())
	if err != nil {
		return "", planpalErrors.Wrap(err, "failed to list events")
	}
	if len(events) == 0 {
		return "You have no upcoming events.", nil
	}

	loc := session.TimeZone()
	var b strings.Builder
	b.WriteString("Upcoming events:")

	currentDay := ""
	for _, e := range events {
		start := e.Start.In(loc)
		day := start.Format(dayLayout)
		if day != currentDay {
			currentDay = day
			fmt.Fprintf(&b, "\n%s\n", day)
		}

		span := "all day"
		if e.Timed() {
			end := e.End.In(loc)
			if sameDay(start, end) {
				span = start.Format(clockLayout) + " to " + end.Format(clockLayout)
			} else {
				span = formatRange(start, end, loc)
			}
		}
		fmt.Fprintf(&b, "- '%s' %s (ID: %s)\n", titleOf(e.Summary), span, e.ID)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
