package agent

import (
	"context"
	"log/slog"
	"strings"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/logger"
	"github.com/harunnryd/planpal/internal/model"
	"github.com/harunnryd/planpal/internal/model/contract"
)

// ModelDecider asks a language model for the next step.
type ModelDecider struct {
	router model.ModelRouter
	model  string
}

func NewModelDecider(router model.ModelRouter, modelName string) *ModelDecider {
	return &ModelDecider{router: router, model: modelName}
}

func (d *ModelDecider) Decide(ctx context.Context, conv Conversation) (Decision, error) {
	resp, err := d.router.Route(ctx, d.model, contract.CompletionRequest{
		Model:    d.model,
		Messages: conv.Messages,
		Tools:    conv.Tools,
	})
	if err != nil {
		return Decision{}, err
	}

	slog.Debug("Model decision received", "content_len", len(resp.Content), "tool_calls", len(resp.ToolCalls), "trace_id", logger.GetTraceID(ctx))

	calls := make([]*contract.ToolCall, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		if tc != nil {
			calls = append(calls, tc)
		}
	}
	if len(calls) > 0 {
		return Decision{Text: resp.Content, Calls: calls}, nil
	}

	if strings.TrimSpace(resp.Content) == "" {
		return Decision{}, planpalErrors.InvalidModelOutput("model returned neither an answer nor a tool call")
	}
	return FinalAnswer(resp.Content), nil
}
