package mcptools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/timeparse"
	"github.com/harunnryd/planpal/internal/tool"

	_ "github.com/harunnryd/planpal/internal/tool/builtin"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type stubAgent struct {
	message string
}

func (a *stubAgent) Run(ctx context.Context, message string, gateway calendar.Gateway) string {
	a.message = message
	return "Done."
}

type callResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func decode(t *testing.T, res *mcp.CallToolResult) callResult {
	t.Helper()
	require.NotNil(t, res)
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var out callResult
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Content, 1)
	return out
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func newBridge(t *testing.T, agent Agent, seed ...calendar.Event) (*Bridge, *calendar.MemoryGateway) {
	t.Helper()
	registry, err := tool.NewBuiltinRegistry(tool.BuiltinOptions{})
	require.NoError(t, err)

	gw := calendar.NewMemoryGateway(seed...)
	b := NewBridge(tool.NewRunner(registry, nil), agent, timeparse.New(ist), gw)
	b.clock = func() time.Time { return time.Date(2025, 7, 9, 20, 0, 0, 0, ist) }
	return b, gw
}

func TestToolHandler_BooksAndReportsConflicts(t *testing.T) {
	b, gw := newBridge(t, nil, calendar.Event{
		ID:      "standup",
		Summary: "Standup",
		Start:   time.Date(2025, 7, 10, 10, 0, 0, 0, ist),
		End:     time.Date(2025, 7, 10, 11, 0, 0, 0, ist),
	})
	ctx := context.Background()

	res, err := b.toolHandler("book_meeting")(ctx, request(map[string]interface{}{
		"summary": "Review",
		"start":   "tomorrow at 4pm",
		"end":     "tomorrow at 5pm",
	}))
	require.NoError(t, err)
	out := decode(t, res)
	assert.False(t, out.IsError)
	assert.Contains(t, out.Content[0].Text, "Meeting 'Review' booked")

	events, err := gw.ListEvents(ctx, time.Date(2025, 7, 10, 0, 0, 0, 0, ist))
	require.NoError(t, err)
	assert.Len(t, events, 2)

	res, err = b.toolHandler("book_meeting")(ctx, request(map[string]interface{}{
		"input": "Clash, 2025-07-10T10:30, 2025-07-10T11:30",
	}))
	require.NoError(t, err)
	out = decode(t, res)
	assert.False(t, out.IsError, "a conflict is an answer, not a failure")
	assert.Contains(t, out.Content[0].Text, "Standup")
}

func TestToolHandler_ErrorsAreFlagged(t *testing.T) {
	b, _ := newBridge(t, nil)

	res, err := b.toolHandler("delete_event")(context.Background(), request(map[string]interface{}{"event_id": "missing"}))
	require.NoError(t, err)
	out := decode(t, res)
	assert.True(t, out.IsError)
	assert.Contains(t, out.Content[0].Text, "Error:")

	res, err = b.toolHandler("current_datetime")(context.Background(), request(nil))
	require.NoError(t, err)
	out = decode(t, res)
	assert.False(t, out.IsError)
	assert.Contains(t, out.Content[0].Text, "2025-07-09T20:00:00+05:30")
}

func TestAskHandler(t *testing.T) {
	agent := &stubAgent{}
	b, _ := newBridge(t, agent)

	res, err := b.askHandler(context.Background(), request(map[string]interface{}{"message": "am I free tomorrow?"}))
	require.NoError(t, err)
	out := decode(t, res)
	assert.Equal(t, "Done.", out.Content[0].Text)
	assert.Equal(t, "am I free tomorrow?", agent.message)

	res, err = b.askHandler(context.Background(), request(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, decode(t, res).IsError)
}

func TestNewServer_ListsEveryTool(t *testing.T) {
	b, _ := newBridge(t, &stubAgent{})
	s := b.NewServer("test")

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range append(tool.BuiltinNames(), AskToolName) {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
