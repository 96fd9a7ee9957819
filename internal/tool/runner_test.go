package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/planpal/internal/calendar"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/timeparse"
)

type stubTool struct {
	name   string
	schema Schema
	run    func(args Args) (string, error)
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub" }
func (t *stubTool) Schema() Schema      { return t.schema }
func (t *stubTool) Execute(ctx context.Context, session *Session, args Args) (string, error) {
	_ = ctx
	_ = session
	return t.run(args)
}

type recordedCall struct {
	tool   string
	status string
}

type recordingObserver struct {
	calls []recordedCall
}

func (o *recordingObserver) ObserveTool(tool string, status string, duration time.Duration) {
	_ = duration
	o.calls = append(o.calls, recordedCall{tool: tool, status: status})
}

func echoSchema() Schema {
	return Schema{Format: "Value", Fields: []Field{{Name: "value", Required: true}}}
}

func newTestRunner(tools ...Tool) (*Runner, *recordingObserver) {
	registry := NewRegistry()
	for _, t := range tools {
		registry.Register(t)
	}
	obs := &recordingObserver{}
	return NewRunner(registry.Freeze(), obs), obs
}

func testSession() *Session {
	now := time.Date(2025, 7, 9, 20, 0, 0, 0, time.UTC)
	return &Session{
		Gateway:  calendar.NewMemoryGateway(),
		Now:      now,
		Location: time.UTC,
		Resolver: timeparse.New(time.UTC),
	}
}

func TestRegistry_FreezeRejectsRegistration(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "Echo", schema: echoSchema()})
	registry.Freeze()

	_, ok := registry.Get(" echo ")
	require.True(t, ok)

	assert.Panics(t, func() {
		registry.Register(&stubTool{name: "other", schema: echoSchema()})
	})
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "echo", schema: echoSchema()})
	assert.Panics(t, func() {
		registry.Register(&stubTool{name: "echo", schema: echoSchema()})
	})
}

func TestRegistry_DefinitionsKeepOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "b", schema: echoSchema()})
	registry.Register(&stubTool{name: "a", schema: Schema{}})

	defs := registry.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "b", defs[0].Name)
	assert.Equal(t, []string{"value"}, defs[0].Parameters["required"])
	assert.Equal(t, "a", defs[1].Name)
	_, hasRequired := defs[1].Parameters["required"]
	assert.False(t, hasRequired)
}

func TestRunnerExecute_Success(t *testing.T) {
	runner, obs := newTestRunner(&stubTool{name: "echo", schema: echoSchema(), run: func(args Args) (string, error) {
		return "got " + args.Get("value"), nil
	}})

	out, status := runner.Execute(context.Background(), testSession(), "echo", json.RawMessage(`{"value":"hi"}`))
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "got hi", out)
	assert.Equal(t, []recordedCall{{tool: "echo", status: "ok"}}, obs.calls)
}

func TestRunnerExecute_UnknownTool(t *testing.T) {
	runner, obs := newTestRunner(&stubTool{name: "echo", schema: echoSchema()})

	out, status := runner.Execute(context.Background(), testSession(), "send_email", json.RawMessage(`{}`))
	assert.Equal(t, StatusUnknownTool, status)
	assert.True(t, status.Malformed())
	assert.Contains(t, out, `"send_email" is not a valid tool`)
	assert.Contains(t, out, "echo")
	assert.Equal(t, "unknown_tool", obs.calls[0].status)
}

func TestRunnerExecute_MalformedJSON(t *testing.T) {
	runner, _ := newTestRunner(&stubTool{name: "echo", schema: echoSchema()})

	out, status := runner.Execute(context.Background(), testSession(), "echo", json.RawMessage(`{"value":`))
	assert.Equal(t, StatusMalformed, status)
	assert.Contains(t, out, "not valid JSON")
}

func TestRunnerExecute_FormatError(t *testing.T) {
	runner, _ := newTestRunner(&stubTool{name: "echo", schema: echoSchema()})

	out, status := runner.Execute(context.Background(), testSession(), "echo", json.RawMessage(`{}`))
	assert.Equal(t, StatusInvalidInput, status)
	assert.False(t, status.Malformed())
	assert.Equal(t, "Error: Input must be in format 'Value'", out)
}

func TestRunnerExecute_ClassifiesFailures(t *testing.T) {
	cases := []struct {
		err    error
		status Status
		prefix string
	}{
		{planpalErrors.Conflict("Cannot book: slot taken"), StatusConflict, "Cannot book: slot taken"},
		{planpalErrors.InvalidInput("couldn't parse start time"), StatusInvalidInput, "Error: couldn't parse start time"},
		{planpalErrors.Unauthenticated("token expired"), StatusUnauthenticated, "Error: could not authenticate"},
		{planpalErrors.NotFound(`event "x" not found`), StatusFailed, `Error: event "x" not found`},
		{context.DeadlineExceeded, StatusFailed, "Error: the calendar did not respond in time"},
		{errors.New("boom"), StatusFailed, "Error: boom"},
	}

	for _, tc := range cases {
		err := tc.err
		runner, _ := newTestRunner(&stubTool{name: "echo", schema: echoSchema(), run: func(Args) (string, error) {
			return "", err
		}})
		out, status := runner.Execute(context.Background(), testSession(), "echo", json.RawMessage(`"x"`))
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Contains(t, out, tc.prefix)
	}
}

func TestRunnerExecute_RecoversPanic(t *testing.T) {
	runner, obs := newTestRunner(&stubTool{name: "echo", schema: echoSchema(), run: func(Args) (string, error) {
		panic("nil map")
	}})

	var out string
	var status Status
	require.NotPanics(t, func() {
		out, status = runner.Execute(context.Background(), testSession(), "echo", json.RawMessage(`"x"`))
	})
	assert.Equal(t, StatusFailed, status)
	assert.Contains(t, out, "failed unexpectedly")
	assert.Equal(t, "failed", obs.calls[0].status)
}

func TestSession_CurrentTimePrefersClock(t *testing.T) {
	s := testSession()
	assert.Equal(t, s.Now, s.CurrentTime())

	later := s.Now.Add(time.Hour)
	s.Clock = func() time.Time { return later }
	assert.Equal(t, later, s.CurrentTime())
}
