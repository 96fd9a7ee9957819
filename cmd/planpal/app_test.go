package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/planpal/internal/agent"
	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/config"
	"github.com/harunnryd/planpal/internal/eventview"
)

type echoDecider struct {
	seen []string
}

func (d *echoDecider) Decide(ctx context.Context, conv agent.Conversation) (agent.Decision, error) {
	last := conv.Messages[len(conv.Messages)-1].Content
	d.seen = append(d.seen, last)
	return agent.FinalAnswer("you said: " + last), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Calendar: config.CalendarConfig{
			CalendarID: "primary",
			Timezone:   "Asia/Kolkata",
			PageSize:   50,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func TestNewApp(t *testing.T) {
	a, err := newApp(testConfig(), &echoDecider{})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", a.loc.String())
	assert.Equal(t, 15*time.Second, a.calendarTimeout)
	assert.NotNil(t, a.recorder)
	assert.Equal(t, "google-calendar", a.breaker.Name())

	cfg := testConfig()
	cfg.Metrics.Enabled = false
	a, err = newApp(cfg, &echoDecider{})
	require.NoError(t, err)
	assert.Nil(t, a.recorder)
}

func TestNewApp_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Calendar.Timezone = "Mars/Olympus"
	_, err := newApp(cfg, &echoDecider{})
	assert.ErrorContains(t, err, "timezone")

	cfg = testConfig()
	cfg.Calendar.RequestTimeout = "whenever"
	_, err = newApp(cfg, &echoDecider{})
	assert.ErrorContains(t, err, "request timeout")

	cfg = testConfig()
	cfg.Calendar.BreakerCooldown = "-1s"
	_, err = newApp(cfg, &echoDecider{})
	assert.ErrorContains(t, err, "breaker cooldown")
}

func TestLocalGateway(t *testing.T) {
	a, err := newApp(testConfig(), &echoDecider{})
	require.NoError(t, err)

	gw, err := a.localGateway(context.Background(), true)
	require.NoError(t, err)
	events, err := gw.ListEvents(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = a.localGateway(context.Background(), false)
	assert.Error(t, err, "no credentials file is configured")

	_, err = a.bearerGateway(context.Background(), " ")
	assert.Error(t, err)
}

func TestREPL(t *testing.T) {
	decider := &echoDecider{}
	a, err := newApp(testConfig(), decider)
	require.NoError(t, err)

	in := strings.NewReader("hello\n\n  am I free?  \n/exit\nignored\n")
	var out bytes.Buffer
	repl := NewREPL(a, calendar.NewMemoryGateway(), in, &out)
	require.NoError(t, repl.Start(context.Background()))

	assert.Equal(t, []string{"hello", "am I free?"}, decider.seen)
	assert.Contains(t, out.String(), "you said: hello")
	assert.Contains(t, out.String(), "you said: am I free?")
	assert.NotContains(t, out.String(), "ignored")
}

func TestREPL_StopsAtEOF(t *testing.T) {
	a, err := newApp(testConfig(), &echoDecider{})
	require.NoError(t, err)

	var out bytes.Buffer
	repl := NewREPL(a, calendar.NewMemoryGateway(), strings.NewReader("hi"), &out)
	require.NoError(t, repl.Start(context.Background()))
	assert.Contains(t, out.String(), "you said: hi")
}

func TestPrintEvents(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	gw := calendar.NewMemoryGateway(calendar.Event{
		ID:      "standup",
		Summary: "Standup",
		Start:   time.Date(2025, 7, 10, 10, 0, 0, 0, loc),
		End:     time.Date(2025, 7, 10, 11, 0, 0, 0, loc),
	})
	from := time.Date(2025, 7, 9, 20, 0, 0, 0, loc)

	var out bytes.Buffer
	require.NoError(t, printEvents(context.Background(), &out, gw, eventview.OutputFormatJSON, loc, from))
	assert.Contains(t, out.String(), `"id": "standup"`)
	assert.Contains(t, out.String(), `"start": "2025-07-10T10:00:00+05:30"`)

	out.Reset()
	require.NoError(t, printEvents(context.Background(), &out, gw, eventview.OutputFormatTable, loc, from.AddDate(0, 0, 2)))
	assert.Equal(t, "No upcoming events\n", out.String())
}
