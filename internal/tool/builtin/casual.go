package builtin

import (
	"context"
	"strings"

	toolcore "github.com/harunnryd/planpal/internal/tool"
)

const defaultCasualReply = "Hello! I can help you schedule, delete, or reschedule meetings. Try saying 'book a meeting tomorrow at 4pm'."

func init() {
	toolcore.RegisterBuiltin("casual_chat", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		reply := strings.TrimSpace(options.CasualReply)
		if reply == "" {
			reply = defaultCasualReply
		}
		return &CasualTool{reply: reply}, nil
	})
}

// CasualTool answers greetings and small talk. It never touches the calendar.
type CasualTool struct {
	reply string
}

func (t *CasualTool) Name() string {
	return "casual_chat"
}

func (t *CasualTool) Description() string {
	return "Handles greetings or small talk like 'hi', 'hello', or 'what can you do?'. Any input."
}

func (t *CasualTool) Schema() toolcore.Schema {
	return toolcore.Schema{}
}

func (t *CasualTool) Execute(ctx context.Context, session *toolcore.Session, args toolcore.Args) (string, error) {
	_ = ctx
	_ = session
	_ = args
	return t.reply, nil
}
