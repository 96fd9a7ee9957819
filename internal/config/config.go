package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Models   ModelsConfig   `koanf:"models"`
	Agent    AgentConfig    `koanf:"agent"`
	Calendar CalendarConfig `koanf:"calendar"`
	Prompts  PromptsConfig  `koanf:"prompts"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type ModelsConfig struct {
	Default             string          `koanf:"default"`
	Fallback            string          `koanf:"fallback"`
	MaxFallbackAttempts int             `koanf:"max_fallback_attempts"`
	RequestTimeout      string          `koanf:"request_timeout"`
	Temperature         float64         `koanf:"temperature"`
	Registry            []ModelRegistry `koanf:"registry"`
}

type ModelRegistry struct {
	Name     string `koanf:"name"`
	Provider string `koanf:"provider"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

// AgentConfig bounds a single conversation turn.
type AgentConfig struct {
	MaxIterations       int `koanf:"max_iterations"`
	MaxMalformedRetries int `koanf:"max_malformed_retries"`
}

type CalendarConfig struct {
	CalendarID      string `koanf:"calendar_id"`
	Timezone        string `koanf:"timezone"`
	CredentialsFile string `koanf:"credentials_file"`
	RequestTimeout  string `koanf:"request_timeout"`
	PageSize        int    `koanf:"page_size"`
	// BreakerFailures consecutive service errors open the circuit for BreakerCooldown.
	BreakerFailures int    `koanf:"breaker_failures"`
	BreakerCooldown string `koanf:"breaker_cooldown"`
}

type PromptsConfig struct {
	Agent AgentPromptConfig `koanf:"agent"`
}

type AgentPromptConfig struct {
	System    string `koanf:"system"`
	Grounding string `koanf:"grounding"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

const (
	DefaultServerPort                = 8000
	DefaultServerLogLevel            = "info"
	DefaultServerReadTimeout         = "10s"
	DefaultServerWriteTimeout        = "90s"
	DefaultServerIdleTimeout         = "60s"
	DefaultServerShutdownTimeout     = "5s"
	DefaultModelDefault              = "gpt-4o-mini"
	DefaultModelFallback             = ""
	DefaultModelMaxFallbackAttempts  = 2
	DefaultModelRequestTimeout       = "45s"
	DefaultModelTemperature          = 0.7
	DefaultOpenAIBaseURL             = "https://api.openai.com/v1"
	DefaultOllamaBaseURL             = "http://localhost:11434/v1"
	DefaultOllamaAPIKey              = "ollama"
	DefaultAgentMaxIterations        = 8
	DefaultAgentMaxMalformedRetries  = 1
	DefaultCalendarID                = "primary"
	DefaultCalendarTimezone          = "Asia/Kolkata"
	DefaultCalendarRequestTimeout    = "15s"
	DefaultCalendarPageSize          = 250
	DefaultCalendarBreakerFailures   = 5
	DefaultCalendarBreakerCooldown   = "30s"
	DefaultMetricsEnabled            = true
	DefaultAgentSystemPrompt         = "You are PlanPal, a scheduling assistant with access to the user's calendar. You can list upcoming events, book meetings, delete events and reschedule events. Use the tools to act; never invent event ids. If a booking is refused because of a conflict, tell the user which slot is occupied and suggest another time. Keep answers short and friendly."
	DefaultAgentGroundingPrompt      = "Before calling book_meeting or reschedule_event with a relative time (today, tomorrow, next friday, in two hours, 5pm), call current_datetime first in the same turn and use its answer to ground the phrase. Call exactly one tool per step. When you have the answer, reply to the user in plain text."
	DefaultAgentApologyReply         = "Sorry, I ran into a problem while working on that. Please try again."
	DefaultAgentMalformedReply       = "Sorry, I couldn't work out how to do that with my calendar tools. Could you rephrase the request?"
	DefaultAgentIterationsReply      = "Sorry, I could not complete that request within the allowed number of steps."
	DefaultAgentUnauthenticatedReply = "Sorry, I could not authenticate with your calendar. Please sign in again."
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":                  DefaultServerPort,
		"server.log_level":             DefaultServerLogLevel,
		"server.read_timeout":          DefaultServerReadTimeout,
		"server.write_timeout":         DefaultServerWriteTimeout,
		"server.idle_timeout":          DefaultServerIdleTimeout,
		"server.shutdown_timeout":      DefaultServerShutdownTimeout,
		"models.default":               DefaultModelDefault,
		"models.fallback":              DefaultModelFallback,
		"models.max_fallback_attempts": DefaultModelMaxFallbackAttempts,
		"models.request_timeout":       DefaultModelRequestTimeout,
		"models.temperature":           DefaultModelTemperature,
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: "openai"},
		},
		"agent.max_iterations":        DefaultAgentMaxIterations,
		"agent.max_malformed_retries": DefaultAgentMaxMalformedRetries,
		"calendar.calendar_id":        DefaultCalendarID,
		"calendar.timezone":           DefaultCalendarTimezone,
		"calendar.credentials_file":   "",
		"calendar.request_timeout":    DefaultCalendarRequestTimeout,
		"calendar.page_size":          DefaultCalendarPageSize,
		"calendar.breaker_failures":   DefaultCalendarBreakerFailures,
		"calendar.breaker_cooldown":   DefaultCalendarBreakerCooldown,
		"prompts.agent.system":        DefaultAgentSystemPrompt,
		"prompts.agent.grounding":     DefaultAgentGroundingPrompt,
		"metrics.enabled":             DefaultMetricsEnabled,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".planpal", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	if err := loadDotEnv(cmd); err != nil {
		return nil, err
	}

	// Environment Variables
	k.Load(env.Provider("PLANPAL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "PLANPAL_")), "_", ".", 1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "openai"
		}
	}

	if id := strings.TrimSpace(os.Getenv("CALENDAR_ID")); id != "" {
		cfg.Calendar.CalendarID = id
	}

	credentials, err := ExpandPath(cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, err
	}
	cfg.Calendar.CredentialsFile = credentials

	// Post-Process: Inject standard Env Vars if missing
	injectProviderEnv(&cfg, "openai", "OPENAI_API_KEY", "OPENAI_BASE_URL")
	injectProviderEnv(&cfg, "anthropic", "ANTHROPIC_API_KEY", "")
	injectProviderEnv(&cfg, "gemini", "GEMINI_API_KEY", "")

	return &cfg, nil
}

// loadDotEnv fills unset environment variables from --env-file, or from
// ./.env when the flag is absent. Variables already in the environment win.
func loadDotEnv(cmd *cobra.Command) error {
	path := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("env-file"); flag != nil {
			path = strings.TrimSpace(flag.Value.String())
		}
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("Ignoring unreadable .env", "error", err)
		}
	}
	return nil
}

func injectProviderEnv(cfg *Config, provider, keyEnv, baseURLEnv string) {
	key := os.Getenv(keyEnv)
	baseURL := ""
	if baseURLEnv != "" {
		baseURL = os.Getenv(baseURLEnv)
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider != provider {
			continue
		}
		if key != "" && m.APIKey == "" {
			cfg.Models.Registry[i].APIKey = key
		}
		if baseURL != "" && m.BaseURL == "" {
			cfg.Models.Registry[i].BaseURL = baseURL
		}
	}
}
