package agent

import (
	"context"
	"time"

	"github.com/harunnryd/planpal/internal/model/contract"
	"github.com/harunnryd/planpal/internal/tool"
)

// Decider picks the next step of a turn from the conversation so far.
type Decider interface {
	Decide(ctx context.Context, conv Conversation) (Decision, error)
}

// Observer is notified once per finished turn.
type Observer interface {
	ObserveTurn(outcome string, iterations int)
}

// Conversation is the transcript the decider sees.
type Conversation struct {
	Messages []contract.Message
	Tools    []contract.ToolDef
}

// Decision is either a final answer or a request to run a tool. Calls beyond
// the first are answered without being executed.
type Decision struct {
	Text  string
	Calls []*contract.ToolCall
}

func FinalAnswer(text string) Decision {
	return Decision{Text: text}
}

func ToolCall(id, name, args string) Decision {
	return Decision{Calls: []*contract.ToolCall{{ID: id, Name: name, Input: args}}}
}

func (d Decision) IsFinalAnswer() bool {
	return len(d.Calls) == 0
}

type Outcome string

const (
	OutcomeAnswered        Outcome = "answered"
	OutcomeApology         Outcome = "apology"
	OutcomeMalformed       Outcome = "malformed"
	OutcomeExhausted       Outcome = "exhausted"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeCancelled       Outcome = "cancelled"
)

// Step is one executed tool call.
type Step struct {
	Call     contract.ToolCall
	Result   string
	Status   tool.Status
	Duration time.Duration
}

// Turn is the record of one user message being handled.
type Turn struct {
	TraceID    string
	Scratchpad []Step
	Iterations int
	Answer     string
	Outcome    Outcome
}

func (t *Turn) finish(outcome Outcome, answer string) {
	t.Outcome = outcome
	t.Answer = answer
}
