package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/logger"
	"github.com/harunnryd/planpal/internal/model/contract"
)

// Status classifies a tool invocation for the agent loop. The model only
// ever sees the result text.
type Status string

const (
	StatusOK              Status = "ok"
	StatusConflict        Status = "conflict"
	StatusInvalidInput    Status = "invalid_input"
	StatusFailed          Status = "failed"
	StatusUnauthenticated Status = "unauthenticated"
	StatusUnknownTool     Status = "unknown_tool"
	StatusMalformed       Status = "malformed"
)

// Malformed reports whether the call itself was unusable, as opposed to a
// well-formed call whose execution failed.
func (s Status) Malformed() bool {
	return s == StatusUnknownTool || s == StatusMalformed
}

// Observer is notified after every invocation.
type Observer interface {
	ObserveTool(tool string, status string, duration time.Duration)
}

type Runner struct {
	registry *Registry
	observer Observer
	mapper   planpalErrors.ErrorMapper
}

func NewRunner(registry *Registry, observer Observer) *Runner {
	return &Runner{
		registry: registry,
		observer: observer,
		mapper:   planpalErrors.NewDefaultErrorMapper(),
	}
}

func (r *Runner) Definitions() []contract.ToolDef {
	if r == nil || r.registry == nil {
		return nil
	}
	return r.registry.Definitions()
}

// Execute looks up, parses and runs one tool call. It never returns an error
// and never panics; every outcome becomes text plus a Status.
func (r *Runner) Execute(ctx context.Context, session *Session, toolName string, input json.RawMessage) (result string, status Status) {
	name := NormalizeToolName(toolName)
	start := time.Now()
	traceID := logger.GetTraceID(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Tool panicked", "tool", name, "panic", rec, "trace_id", traceID)
			result = fmt.Sprintf("Error: the %s tool failed unexpectedly. Please try again.", name)
			status = StatusFailed
		}
		duration := time.Since(start)
		if r.observer != nil {
			r.observer.ObserveTool(name, string(status), duration)
		}
		slog.Info("Tool finished", "tool", name, "status", status, "duration", duration, "trace_id", traceID)
	}()

	t, ok := r.registry.Get(name)
	if !ok {
		slog.Warn("Unknown tool requested", "tool", toolName, "trace_id", traceID)
		return fmt.Sprintf("Error: %q is not a valid tool. Use one of: %s.", toolName, strings.Join(r.registry.Names(), ", ")), StatusUnknownTool
	}

	args, err := t.Schema().Parse(input)
	if err != nil {
		slog.Warn("Tool input validation failed", "tool", name, "error", err, "trace_id", traceID)
		if planpalErrors.IsCategory(err, planpalErrors.ErrInvalidModelOutput) {
			return fmt.Sprintf("Error: %s. Send the arguments for %s as JSON, for example {\"input\": \"%s\"}.", planpalErrors.Message(err), name, t.Schema().Format), StatusMalformed
		}
		return "Error: " + planpalErrors.Message(err), StatusInvalidInput
	}

	slog.Debug("Executing tool", "tool", name, "args", args, "trace_id", traceID)
	out, err := t.Execute(ctx, session, args)
	if err != nil {
		return r.describeFailure(name, err)
	}
	return out, StatusOK
}

func (r *Runner) describeFailure(name string, err error) (string, Status) {
	mapped := r.mapper.MapError(err)
	slog.Error("Tool execution failed", "tool", name, "category", r.mapper.Category(mapped), "error", err)

	switch {
	case planpalErrors.IsCategory(mapped, planpalErrors.ErrConflict):
		return planpalErrors.Message(mapped), StatusConflict
	case planpalErrors.IsCategory(mapped, planpalErrors.ErrInvalidInput):
		return "Error: " + planpalErrors.Message(mapped), StatusInvalidInput
	case planpalErrors.IsCategory(mapped, planpalErrors.ErrUnauthenticated):
		return "Error: could not authenticate with the calendar: " + planpalErrors.Message(mapped), StatusUnauthenticated
	case errors.Is(mapped, context.Canceled):
		return "Error: the request was cancelled before " + name + " finished.", StatusFailed
	case planpalErrors.IsCategory(mapped, planpalErrors.ErrTransient):
		return "Error: the calendar did not respond in time (" + planpalErrors.Message(mapped) + "). Please try again.", StatusFailed
	default:
		return "Error: " + planpalErrors.Message(mapped), StatusFailed
	}
}
