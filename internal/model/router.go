package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/harunnryd/planpal/internal/config"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/logger"
	"github.com/harunnryd/planpal/internal/model/contract"
	anthropicProvider "github.com/harunnryd/planpal/internal/model/providers/anthropic"
	geminiProvider "github.com/harunnryd/planpal/internal/model/providers/gemini"
	openaiProvider "github.com/harunnryd/planpal/internal/model/providers/openai"
)

// DefaultModelRouter implements ModelRouter interface
type DefaultModelRouter struct {
	cfg            config.ModelsConfig
	providers      map[string]Provider
	requestTimeout time.Duration
	mu             sync.RWMutex
}

// NewModelRouter creates a new model router
func NewModelRouter(cfg config.ModelsConfig) (*DefaultModelRouter, error) {
	timeout, err := config.DurationOrDefault(cfg.RequestTimeout, config.DefaultModelRequestTimeout)
	if err != nil {
		return nil, planpalErrors.InvalidInput(fmt.Sprintf("invalid models.request_timeout: %v", err))
	}

	router := &DefaultModelRouter{
		cfg:            cfg,
		providers:      make(map[string]Provider),
		requestTimeout: timeout,
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

// Route routes a completion request to the appropriate provider
func (r *DefaultModelRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	if model == "" {
		model = r.cfg.Default
	}
	slog.Info("Routing completion request", "model", model, "trace_id", traceID)

	if req.Temperature == nil {
		t := float32(r.cfg.Temperature)
		req.Temperature = &t
	}

	provider, resolved, err := r.resolveProvider(ctx, model)
	if err != nil {
		return nil, err
	}

	return r.executeWithFallback(ctx, resolved, provider, req, traceID)
}

// ListModels returns all registered model names
func (r *DefaultModelRouter) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for name := range r.providers {
		models = append(models, name)
	}
	sort.Strings(models)

	return models
}

// Health checks the health of the router and its providers
func (r *DefaultModelRouter) Health(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.providers) == 0 {
		return planpalErrors.NotFound("no model providers configured")
	}

	for name, provider := range r.providers {
		if err := provider.Health(ctx); err != nil {
			slog.Warn("Provider unhealthy", "provider", name, "error", err)
			return planpalErrors.Transient(fmt.Sprintf("provider %s unhealthy", name))
		}
	}

	return nil
}

// initProviders initializes all providers from configuration
func (r *DefaultModelRouter) initProviders() error {
	for _, entry := range r.cfg.Registry {
		provider, err := createProvider(entry)
		if err != nil {
			slog.Warn("Failed to create provider", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		r.register(entry.Name, provider)
		slog.Info("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	if len(r.providers) == 0 && len(r.cfg.Registry) > 0 {
		return planpalErrors.Internal("no providers initialized")
	}

	return nil
}

func (r *DefaultModelRouter) register(name string, provider Provider) {
	r.mu.Lock()
	r.providers[name] = provider
	r.mu.Unlock()
}

// resolveProvider resolves a provider by model name with fallback
func (r *DefaultModelRouter) resolveProvider(ctx context.Context, model string) (Provider, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", planpalErrors.Wrap(ctx.Err(), "provider resolution cancelled")
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if provider, exists := r.providers[model]; exists {
		return provider, model, nil
	}

	slog.Warn("Model not found", "model", model)
	if r.cfg.Fallback != "" && model != r.cfg.Fallback {
		if fallbackProvider, ok := r.providers[r.cfg.Fallback]; ok {
			slog.Info("Trying fallback model", "model", model, "fallback", r.cfg.Fallback)
			return fallbackProvider, r.cfg.Fallback, nil
		}
	}

	return nil, "", planpalErrors.NotFound(fmt.Sprintf("model %s not found", model))
}

// executeWithFallback executes a request with fallback logic. Each attempt
// runs under its own request timeout.
func (r *DefaultModelRouter) executeWithFallback(ctx context.Context, model string, provider Provider, req contract.CompletionRequest, traceID string) (*contract.CompletionResponse, error) {
	maxAttempts := r.cfg.MaxFallbackAttempts
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultModelMaxFallbackAttempts
	}

	currentModel := model
	currentProvider := provider

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, planpalErrors.Wrap(ctx.Err(), "request execution cancelled")
		default:
		}

		req.Model = currentModel
		resp, err := r.generate(ctx, currentProvider, req)
		if err == nil {
			slog.Info("Request completed", "model", currentModel, "attempt", attempt+1, "trace_id", traceID)
			return resp, nil
		}

		slog.Error("Provider request failed", "model", currentModel, "attempt", attempt+1, "error", err, "trace_id", traceID)

		if errors.Is(err, context.Canceled) {
			return nil, planpalErrors.Wrap(err, "provider request cancelled")
		}
		if r.cfg.Fallback == "" || currentModel == r.cfg.Fallback {
			return nil, classifyProviderError(err)
		}

		r.mu.RLock()
		fallbackProvider, exists := r.providers[r.cfg.Fallback]
		r.mu.RUnlock()
		if !exists {
			return nil, planpalErrors.NotFound(fmt.Sprintf("fallback model %s not found", r.cfg.Fallback))
		}

		slog.Info("Attempting fallback", "from", currentModel, "to", r.cfg.Fallback, "trace_id", traceID)
		currentModel = r.cfg.Fallback
		currentProvider = fallbackProvider
	}

	return nil, planpalErrors.Internal("fallback exhausted")
}

func (r *DefaultModelRouter) generate(ctx context.Context, provider Provider, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if r.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.requestTimeout)
		defer cancel()
	}

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, planpalErrors.InvalidModelOutput("provider returned an empty response")
	}
	return resp, nil
}

// classifyProviderError keeps model failures out of the calendar
// authentication category; only timeouts are worth retrying.
func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return planpalErrors.WrapWithCategory(err, "provider request timed out", planpalErrors.ErrTransient)
	}
	if planpalErrors.IsCategory(err, planpalErrors.ErrInvalidModelOutput) {
		return err
	}
	return planpalErrors.WrapWithCategory(err, "provider request failed", planpalErrors.ErrInternal)
}

// createProvider creates a provider instance based on registry entry
func createProvider(entry config.ModelRegistry) (Provider, error) {
	switch entry.Provider {
	case "openai":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
		}

		if entry.APIKey == "" {
			return nil, planpalErrors.InvalidInput("API key required for OpenAI provider")
		}

		return &ProviderAdapter{
			provider:     openaiProvider.New(entry.APIKey, baseURL),
			name:         entry.Name,
			providerType: "openai",
		}, nil

	case "ollama":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOllamaBaseURL
		}

		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = config.DefaultOllamaAPIKey
		}

		return &ProviderAdapter{
			provider:     openaiProvider.New(apiKey, baseURL),
			name:         entry.Name,
			providerType: "ollama",
		}, nil

	case "anthropic":
		if entry.APIKey == "" {
			return nil, planpalErrors.InvalidInput("API key required for Anthropic provider")
		}

		return &ProviderAdapter{
			provider:     anthropicProvider.New(entry.APIKey, entry.BaseURL),
			name:         entry.Name,
			providerType: "anthropic",
		}, nil

	case "gemini":
		if entry.APIKey == "" {
			return nil, planpalErrors.InvalidInput("API key required for Gemini provider")
		}

		provider, err := geminiProvider.New(entry.APIKey)
		if err != nil {
			return nil, planpalErrors.WrapWithCategory(err, "failed to create Gemini provider", planpalErrors.ErrInternal)
		}

		return &ProviderAdapter{
			provider:     provider,
			name:         entry.Name,
			providerType: "gemini",
		}, nil

	default:
		return nil, planpalErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
