package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/planpal/internal/config"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/model/contract"
)

type fakeProvider struct {
	name     string
	err      error
	content  string
	requests []contract.CompletionRequest
	deadline bool
}

func (p *fakeProvider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	_, p.deadline = ctx.Deadline()
	if p.err != nil {
		return nil, p.err
	}
	return &contract.CompletionResponse{Content: p.content}, nil
}

func (p *fakeProvider) Name() string                     { return p.name }
func (p *fakeProvider) Type() string                     { return "fake" }
func (p *fakeProvider) Health(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T, cfg config.ModelsConfig, providers ...*fakeProvider) *DefaultModelRouter {
	t.Helper()
	router, err := NewModelRouter(cfg)
	require.NoError(t, err)
	for _, p := range providers {
		router.register(p.name, p)
	}
	return router
}

func TestRoute_DefaultsModelTemperatureAndTimeout(t *testing.T) {
	primary := &fakeProvider{name: "gpt-4o-mini", content: "hi"}
	router := newTestRouter(t, config.ModelsConfig{Default: "gpt-4o-mini", Temperature: 0.7, RequestTimeout: "5s"}, primary)

	resp, err := router.Route(context.Background(), "", contract.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)

	require.Len(t, primary.requests, 1)
	assert.Equal(t, "gpt-4o-mini", primary.requests[0].Model)
	require.NotNil(t, primary.requests[0].Temperature)
	assert.InDelta(t, 0.7, *primary.requests[0].Temperature, 0.0001)
	assert.True(t, primary.deadline)
}

func TestRoute_FallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("503 overloaded")}
	backup := &fakeProvider{name: "backup", content: "from backup"}
	router := newTestRouter(t, config.ModelsConfig{Default: "primary", Fallback: "backup", MaxFallbackAttempts: 2}, primary, backup)

	resp, err := router.Route(context.Background(), "primary", contract.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "from backup", resp.Content)
	require.Len(t, backup.requests, 1)
	assert.Equal(t, "backup", backup.requests[0].Model)
}

func TestRoute_UnknownModelUsesFallback(t *testing.T) {
	backup := &fakeProvider{name: "backup", content: "ok"}
	router := newTestRouter(t, config.ModelsConfig{Fallback: "backup"}, backup)

	_, err := router.Route(context.Background(), "missing", contract.CompletionRequest{})
	require.NoError(t, err)

	router = newTestRouter(t, config.ModelsConfig{}, backup)
	_, err = router.Route(context.Background(), "missing", contract.CompletionRequest{})
	assert.True(t, planpalErrors.IsCategory(err, planpalErrors.ErrNotFound))
}

func TestRoute_ClassifiesProviderErrors(t *testing.T) {
	router := newTestRouter(t, config.ModelsConfig{}, &fakeProvider{name: "slow", err: context.DeadlineExceeded})
	_, err := router.Route(context.Background(), "slow", contract.CompletionRequest{})
	assert.True(t, planpalErrors.IsCategory(err, planpalErrors.ErrTransient))

	// A rejected model key is not a calendar authentication failure.
	router = newTestRouter(t, config.ModelsConfig{}, &fakeProvider{name: "m", err: errors.New("401 unauthorized")})
	_, err = router.Route(context.Background(), "m", contract.CompletionRequest{})
	assert.True(t, planpalErrors.IsCategory(err, planpalErrors.ErrInternal))
	assert.False(t, planpalErrors.IsCategory(err, planpalErrors.ErrUnauthenticated))
}

func TestRoute_CancelledContext(t *testing.T) {
	router := newTestRouter(t, config.ModelsConfig{}, &fakeProvider{name: "m"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := router.Route(ctx, "m", contract.CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewModelRouter(t *testing.T) {
	_, err := NewModelRouter(config.ModelsConfig{RequestTimeout: "soon"})
	assert.True(t, planpalErrors.IsCategory(err, planpalErrors.ErrInvalidInput))

	_, err = NewModelRouter(config.ModelsConfig{Registry: []config.ModelRegistry{{Name: "x", Provider: "openai"}}})
	assert.True(t, planpalErrors.IsCategory(err, planpalErrors.ErrInternal))

	router, err := NewModelRouter(config.ModelsConfig{Registry: []config.ModelRegistry{
		{Name: "gpt-4o-mini", Provider: "openai", APIKey: "sk-test"},
		{Name: "llama3", Provider: "ollama"},
		{Name: "bogus", Provider: "zai"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini", "llama3"}, router.ListModels())
	assert.NoError(t, router.Health(context.Background()))

	empty, err := NewModelRouter(config.ModelsConfig{RequestTimeout: time.Second.String()})
	require.NoError(t, err)
	assert.Error(t, empty.Health(context.Background()))
}
