package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/harunnryd/planpal/internal/model/contract"
)

func TestToContents(t *testing.T) {
	cfg := &genai.GenerateContentConfig{}
	contents := toContents([]contract.Message{
		{Role: contract.RoleSystem, Content: "be brief"},
		{Role: contract.RoleUser, Content: "delete abc"},
		{Role: contract.RoleAssistant, ToolCalls: []*contract.ToolCall{{ID: "c1", Name: "delete_event", Input: `{"event_id":"abc"}`}}},
		{Role: contract.RoleTool, ToolCallID: "c1", Name: "delete_event", Content: "Event with ID 'abc' deleted successfully."},
	}, cfg)

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)

	call := contents[1].Parts[0].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "delete_event", call.Name)
	assert.Equal(t, "abc", call.Args["event_id"])

	result := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, result)
	assert.Equal(t, "delete_event", result.Name)
	assert.Equal(t, "c1", result.ID)
	assert.Equal(t, "Event with ID 'abc' deleted successfully.", result.Response["output"])
}
