package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/harunnryd/planpal/internal/agent"
	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/calendar/google"
	"github.com/harunnryd/planpal/internal/config"
	"github.com/harunnryd/planpal/internal/metrics"
	"github.com/harunnryd/planpal/internal/model"
	"github.com/harunnryd/planpal/internal/timeparse"
	"github.com/harunnryd/planpal/internal/tool"
	_ "github.com/harunnryd/planpal/internal/tool/builtin"
)

// app holds everything a command needs to run turns.
type app struct {
	cfg             *config.Config
	agent           *agent.Agent
	runner          *tool.Runner
	resolver        *timeparse.Resolver
	recorder        *metrics.Recorder
	loc             *time.Location
	calendarTimeout time.Duration
	// breaker is shared by every Google gateway the process builds.
	breaker         *gobreaker.CircuitBreaker
}

func newApp(cfg *config.Config, decider agent.Decider) (*app, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(cfg.Calendar.Timezone))
	if err != nil {
		return nil, fmt.Errorf("load calendar timezone %q: %w", cfg.Calendar.Timezone, err)
	}
	calendarTimeout, err := config.DurationOrDefault(cfg.Calendar.RequestTimeout, config.DefaultCalendarRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse calendar request timeout: %w", err)
	}
	breakerCooldown, err := config.DurationOrDefault(cfg.Calendar.BreakerCooldown, config.DefaultCalendarBreakerCooldown)
	if err != nil {
		return nil, fmt.Errorf("parse calendar breaker cooldown: %w", err)
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	registry, err := tool.NewBuiltinRegistry(tool.BuiltinOptions{})
	if err != nil {
		return nil, err
	}

	if decider == nil {
		router, err := model.NewModelRouter(cfg.Models)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize model router: %w", err)
		}
		decider = agent.NewModelDecider(router, cfg.Models.Default)
	}

	runner := tool.NewRunner(registry, recorder)
	resolver := timeparse.New(loc)
	a := agent.New(decider, runner, resolver, recorder, agent.OptionsFromConfig(cfg))

	return &app{
		cfg:             cfg,
		agent:           a,
		runner:          runner,
		resolver:        resolver,
		recorder:        recorder,
		loc:             loc,
		calendarTimeout: calendarTimeout,
		breaker:         calendar.NewBreaker("google-calendar", cfg.Calendar.BreakerFailures, breakerCooldown),
	}, nil
}

func (a *app) wrap(gw calendar.Gateway) calendar.Gateway {
	return calendar.Instrument(gw, a.recorder, a.calendarTimeout)
}

func (a *app) gatewayOptions() []google.Option {
	return []google.Option{google.WithLocation(a.loc), google.WithPageSize(a.cfg.Calendar.PageSize)}
}

// serviceAccountGateway binds the configured calendar through a
// service-account key.
func (a *app) serviceAccountGateway(ctx context.Context) (calendar.Gateway, error) {
	ts, err := google.ServiceAccountTokenSource(ctx, a.cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewService(ctx, ts)
	if err != nil {
		return nil, err
	}
	return a.wrap(calendar.Guard(google.New(svc, a.cfg.Calendar.CalendarID, a.gatewayOptions()...), a.breaker)), nil
}

// bearerGateway binds the caller's primary calendar through their access token.
func (a *app) bearerGateway(ctx context.Context, accessToken string) (calendar.Gateway, error) {
	ts, err := google.BearerTokenSource(accessToken)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewService(ctx, ts)
	if err != nil {
		return nil, err
	}
	return a.wrap(calendar.Guard(google.New(svc, a.cfg.Calendar.CalendarID, a.gatewayOptions()...), a.breaker)), nil
}

// localGateway picks the in-memory calendar for offline runs.
func (a *app) localGateway(ctx context.Context, offline bool) (calendar.Gateway, error) {
	if offline {
		return a.wrap(calendar.NewMemoryGateway()), nil
	}
	return a.serviceAccountGateway(ctx)
}
