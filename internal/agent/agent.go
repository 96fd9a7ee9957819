// Package agent runs one conversational turn: the model decides, a tool runs,
// and the loop repeats until there is an answer or the turn has to stop.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/config"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/logger"
	"github.com/harunnryd/planpal/internal/model/contract"
	"github.com/harunnryd/planpal/internal/timeparse"
	"github.com/harunnryd/planpal/internal/tool"
)

// Replies are the fixed texts a turn ends with when it cannot answer.
type Replies struct {
	Apology         string
	Malformed       string
	Exhausted       string
	Unauthenticated string
}

type Options struct {
	MaxIterations       int
	MaxMalformedRetries int
	SystemPrompt        string
	GroundingPrompt     string
	Replies             Replies
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// OptionsFromConfig reads the agent and prompt sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxIterations:       cfg.Agent.MaxIterations,
		MaxMalformedRetries: cfg.Agent.MaxMalformedRetries,
		SystemPrompt:        cfg.Prompts.Agent.System,
		GroundingPrompt:     cfg.Prompts.Agent.Grounding,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = config.DefaultAgentMaxIterations
	}
	if o.MaxMalformedRetries <= 0 {
		o.MaxMalformedRetries = config.DefaultAgentMaxMalformedRetries
	}
	if strings.TrimSpace(o.SystemPrompt) == "" {
		o.SystemPrompt = config.DefaultAgentSystemPrompt
	}
	if strings.TrimSpace(o.GroundingPrompt) == "" {
		o.GroundingPrompt = config.DefaultAgentGroundingPrompt
	}
	if o.Replies.Apology == "" {
		o.Replies.Apology = config.DefaultAgentApologyReply
	}
	if o.Replies.Malformed == "" {
		o.Replies.Malformed = config.DefaultAgentMalformedReply
	}
	if o.Replies.Exhausted == "" {
		o.Replies.Exhausted = config.DefaultAgentIterationsReply
	}
	if o.Replies.Unauthenticated == "" {
		o.Replies.Unauthenticated = config.DefaultAgentUnauthenticatedReply
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Agent is shared between requests; all per-turn state lives in Turn.
type Agent struct {
	decider  Decider
	runner   *tool.Runner
	resolver *timeparse.Resolver
	observer Observer
	opts     Options
}

func New(decider Decider, runner *tool.Runner, resolver *timeparse.Resolver, observer Observer, opts Options) *Agent {
	return &Agent{
		decider:  decider,
		runner:   runner,
		resolver: resolver,
		observer: observer,
		opts:     opts.withDefaults(),
	}
}

// Run handles one user message against gateway and always returns text.
func (a *Agent) Run(ctx context.Context, message string, gateway calendar.Gateway) string {
	return a.RunTurn(ctx, message, gateway).Answer
}

// RunTurn is Run with the full record of the turn.
func (a *Agent) RunTurn(ctx context.Context, message string, gateway calendar.Gateway) (turn *Turn) {
	ctx, traceID := logger.EnsureTraceID(ctx)
	turn = &Turn{TraceID: traceID}
	start := time.Now()

	slog.Info("Turn started", "trace_id", traceID, "session_id", logger.GetSessionID(ctx))

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Turn panicked", "panic", rec, "trace_id", traceID)
			turn.finish(OutcomeApology, a.opts.Replies.Apology)
		}
		if a.observer != nil {
			a.observer.ObserveTurn(string(turn.Outcome), turn.Iterations)
		}
		slog.Info("Turn finished", "outcome", turn.Outcome, "iterations", turn.Iterations, "tools", len(turn.Scratchpad), "duration", time.Since(start), "trace_id", traceID)
	}()

	session := tool.NewSession(gateway, a.resolver, a.opts.Clock)
	conv := Conversation{
		Messages: []contract.Message{
			{Role: contract.RoleSystem, Content: a.opts.SystemPrompt + "\n\n" + a.opts.GroundingPrompt},
			{Role: contract.RoleUser, Content: message},
		},
		Tools: a.runner.Definitions(),
	}

	var malformed streak
	for turn.Iterations < a.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			slog.Warn("Turn cancelled", "error", err, "trace_id", traceID)
			turn.finish(OutcomeCancelled, a.opts.Replies.Apology)
			return turn
		}

		turn.Iterations++
		decision, err := a.decider.Decide(ctx, conv)
		if err != nil {
			if planpalErrors.IsCategory(err, planpalErrors.ErrInvalidModelOutput) {
				attempt := malformed.record(classModelOutput)
				slog.Warn("Unusable model reply", "error", err, "attempt", attempt, "trace_id", traceID)
				if attempt > a.opts.MaxMalformedRetries {
					turn.finish(OutcomeMalformed, a.opts.Replies.Malformed)
					return turn
				}
				conv.Messages = append(conv.Messages, contract.Message{
					Role:    contract.RoleUser,
					Content: "Your last reply could not be used (" + planpalErrors.Message(err) + "). Either answer me in plain text or call exactly one of the tools.",
				})
				continue
			}
			turn.finish(a.failure(err, traceID))
			return turn
		}

		if decision.IsFinalAnswer() {
			turn.finish(OutcomeAnswered, strings.TrimSpace(decision.Text))
			return turn
		}

		step := a.execute(ctx, session, &conv, decision)
		turn.Scratchpad = append(turn.Scratchpad, step)

		switch {
		case step.Status == tool.StatusUnauthenticated:
			turn.finish(OutcomeUnauthenticated, a.opts.Replies.Unauthenticated)
			return turn
		case step.Status.Malformed():
			if malformed.record(string(step.Status)) > a.opts.MaxMalformedRetries {
				slog.Warn("Repeated malformed tool call", "tool", step.Call.Name, "trace_id", traceID)
				turn.finish(OutcomeMalformed, a.opts.Replies.Malformed)
				return turn
			}
		default:
			malformed = streak{}
		}
	}

	slog.Warn("Iteration cap reached", "max", a.opts.MaxIterations, "trace_id", traceID)
	turn.finish(OutcomeExhausted, a.opts.Replies.Exhausted)
	return turn
}

const classModelOutput = "model_output"

// streak counts consecutive unusable steps of one class. A step of another
// class starts a new streak.
type streak struct {
	class string
	count int
}

func (s *streak) record(class string) int {
	if s.class != class {
		s.class, s.count = class, 0
	}
	s.count++
	return s.count
}

// execute runs the first call of decision and appends the call and every
// result to conv.
func (a *Agent) execute(ctx context.Context, session *tool.Session, conv *Conversation, decision Decision) Step {
	conv.Messages = append(conv.Messages, contract.Message{
		Role:      contract.RoleAssistant,
		Content:   decision.Text,
		ToolCalls: decision.Calls,
	})

	call := decision.Calls[0]
	started := time.Now()
	result, status := a.runner.Execute(ctx, session, call.Name, json.RawMessage(call.Input))
	step := Step{Call: *call, Result: result, Status: status, Duration: time.Since(started)}

	conv.Messages = append(conv.Messages, contract.Message{
		Role:       contract.RoleTool,
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    result,
	})
	for _, extra := range decision.Calls[1:] {
		conv.Messages = append(conv.Messages, contract.Message{
			Role:       contract.RoleTool,
			ToolCallID: extra.ID,
			Name:       extra.Name,
			Content:    fmt.Sprintf("Error: only one tool runs per step, so %s was not executed. Call it again if it is still needed.", extra.Name),
		})
	}
	return step
}

func (a *Agent) failure(err error, traceID string) (Outcome, string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Turn cancelled", "error", err, "trace_id", traceID)
		return OutcomeCancelled, a.opts.Replies.Apology
	case planpalErrors.IsCategory(err, planpalErrors.ErrUnauthenticated):
		return OutcomeUnauthenticated, a.opts.Replies.Unauthenticated
	default:
		slog.Error("Decider failed", "error", err, "trace_id", traceID)
		return OutcomeApology, a.opts.Replies.Apology
	}
}
