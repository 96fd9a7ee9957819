package builtin

import (
	"context"
	"fmt"
	"time"

	toolcore "github.com/harunnryd/planpal/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("current_datetime", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &TimeTool{}, nil
	})
}

// TimeTool reports the session's reference instant so the model can ground
// relative phrases before calling a scheduling tool.
type TimeTool struct{}

func (t *TimeTool) Name() string {
	return "current_datetime"
}

func (t *TimeTool) Description() string {
	return "Returns the current date, time, weekday and time zone. Call this before using relative times like 'tomorrow' or 'next friday'. Takes no input."
}

func (t *TimeTool) Schema() toolcore.Schema {
	return toolcore.Schema{}
}

func (t *TimeTool) Execute(ctx context.Context, session *toolcore.Session, args toolcore.Args) (string, error) {
	_ = ctx
	_ = args

	now := session.CurrentTime()
	return fmt.Sprintf("Current date and time: %s (%s, time zone %s)",
		now.Format(time.RFC3339), now.Weekday(), session.TimeZone().String()), nil
}
