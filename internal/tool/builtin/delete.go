package builtin

import (
	"context"
	"fmt"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	toolcore "github.com/harunnryd/planpal/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("delete_event", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &DeleteTool{}, nil
	})
}

type DeleteTool struct{}

func (t *DeleteTool) Name() string {
	return "delete_event"
}

func (t *DeleteTool) Description() string {
	return "Deletes an event. Input format: 'Event ID'. Use check_availability to find the ID."
}

func (t *DeleteTool) Schema() toolcore.Schema {
	return toolcore.Schema{
		Format: "Event ID",
		Fields: []toolcore.Field{
			{Name: "event_id", Description: "ID of the event to delete", Required: true},
		},
	}
}

func (t *DeleteTool) Execute(ctx context.Context, session *toolcore.Session, args toolcore.Args) (string, error) {
	id := args.Get("event_id")
	if err := session.Gateway.DeleteEvent(ctx, id); err != nil {
		return "", planpalErrors.Wrap(err, "failed to delete event")
	}
	return fmt.Sprintf("Event with ID '%s' deleted successfully.", id), nil
}
