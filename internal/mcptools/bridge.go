// Package mcptools publishes the scheduling tools and the assistant itself as
// Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/logger"
	"github.com/harunnryd/planpal/internal/timeparse"
	"github.com/harunnryd/planpal/internal/tool"
)

// AskToolName is the MCP tool that runs a whole assistant turn.
const AskToolName = "ask_planpal"

// Agent answers one message against one calendar.
type Agent interface {
	Run(ctx context.Context, message string, gateway calendar.Gateway) string
}

// Bridge serves one calendar identity. Every call gets a fresh tool session.
type Bridge struct {
	runner   *tool.Runner
	agent    Agent
	resolver *timeparse.Resolver
	gateway  calendar.Gateway
	clock    func() time.Time
}

func NewBridge(runner *tool.Runner, agent Agent, resolver *timeparse.Resolver, gateway calendar.Gateway) *Bridge {
	return &Bridge{
		runner:   runner,
		agent:    agent,
		resolver: resolver,
		gateway:  gateway,
		clock:    time.Now,
	}
}

// NewServer builds an MCP server with every tool registered.
func (b *Bridge) NewServer(version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("planpal", version,
		mcpserver.WithToolCapabilities(false),
	)
	b.Register(s)
	return s
}

// Register adds the built-in tools followed by ask_planpal.
func (b *Bridge) Register(s *mcpserver.MCPServer) {
	for _, def := range b.runner.Definitions() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			slog.Error("Skipping MCP tool with unencodable schema", "tool", def.Name, "error", err)
			continue
		}
		s.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, schema), b.toolHandler(def.Name))
	}

	if b.agent != nil {
		ask := mcp.NewTool(AskToolName,
			mcp.WithDescription("Ask PlanPal to handle a scheduling request in plain language, for example 'book a 30 minute sync with Sam tomorrow at 4pm'."),
			mcp.WithString("message",
				mcp.Required(),
				mcp.Description("The request, written as you would say it to an assistant"),
			),
		)
		s.AddTool(ask, b.askHandler)
	}
}

func (b *Bridge) toolHandler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, _ = logger.EnsureTraceID(ctx)

		raw, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError("arguments could not be encoded: " + err.Error()), nil
		}

		session := tool.NewSession(b.gateway, b.resolver, b.clock)
		text, status := b.runner.Execute(ctx, session, name, raw)
		switch status {
		case tool.StatusOK, tool.StatusConflict:
			return mcp.NewToolResultText(text), nil
		default:
			return mcp.NewToolResultError(text), nil
		}
	}
}

func (b *Bridge) askHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	message, _ := args["message"].(string)
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	return mcp.NewToolResultText(b.agent.Run(ctx, message, b.gateway)), nil
}

// ServeStdio blocks until stdin closes or the server fails.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}
