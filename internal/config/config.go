package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Matchmaker/internal/concierge"
	"github.com/MikeSquared-Agency/Matchmaker/internal/rationale"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Data      DataConfig      `yaml:"data"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Rationale RationaleConfig `yaml:"rationale"`
	Concierge ConciergeConfig `yaml:"concierge"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// DatabaseConfig selects the store. An empty URL keeps state in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HermesConfig selects the event bus. An empty URL disables events.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type DataConfig struct {
	ProfilesPath string `yaml:"profiles_path"`
}

type ScoringConfig struct {
	Weights scoring.WeightSet `yaml:"weights"`
}

type RationaleConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Provider          string `yaml:"provider"`
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	TimeoutMs         int    `yaml:"timeout_ms"`
	MaxOutputTokens   int    `yaml:"max_output_tokens"`
	MaxConcurrent     int    `yaml:"max_concurrent"`
	BreakerFailures   uint32 `yaml:"breaker_failures"`
	BreakerCooldownMs int    `yaml:"breaker_cooldown_ms"`
}

// ConciergeConfig shares provider credentials with the rationale section.
type ConciergeConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Model           string `yaml:"model"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	MaxPromptLog int    `yaml:"max_prompt_log"`
}

// SlogLevel maps the configured level name, defaulting to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RationaleSettings converts the section into the provider configuration.
func (c *Config) RationaleSettings() rationale.Config {
	r := c.Rationale
	return rationale.Config{
		Enabled:         r.Enabled,
		Provider:        r.Provider,
		APIKey:          r.APIKey,
		Model:           r.Model,
		BaseURL:         r.BaseURL,
		Timeout:         time.Duration(r.TimeoutMs) * time.Millisecond,
		MaxOutputTokens: r.MaxOutputTokens,
		MaxConcurrent:   r.MaxConcurrent,
		BreakerFailures: r.BreakerFailures,
		BreakerCooldown: time.Duration(r.BreakerCooldownMs) * time.Millisecond,
		MaxPromptLog:    c.Logging.MaxPromptLog,
	}
}

// ConciergeSettings converts the section into the concierge configuration.
func (c *Config) ConciergeSettings() concierge.Config {
	model := c.Concierge.Model
	if model == "" {
		model = c.Rationale.Model
	}
	return concierge.Config{
		Enabled:         c.Concierge.Enabled,
		Provider:        c.Rationale.Provider,
		APIKey:          c.Rationale.APIKey,
		Model:           model,
		BaseURL:         c.Rationale.BaseURL,
		Timeout:         time.Duration(c.Concierge.TimeoutMs) * time.Millisecond,
		MaxOutputTokens: c.Concierge.MaxOutputTokens,
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("scoring.weights: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.MetricsPort <= 0 {
		return fmt.Errorf("server ports must be positive")
	}
	if c.Server.Port == c.Server.MetricsPort {
		return fmt.Errorf("server.port and server.metrics_port must differ")
	}
	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be positive")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8600,
			MetricsPort:        8601,
			RateLimitPerMinute: 120,
		},
		Data: DataConfig{
			ProfilesPath: "data/profiles.json",
		},
		Scoring: ScoringConfig{
			Weights: scoring.DefaultWeights(),
		},
		Rationale: RationaleConfig{
			Provider:          "openai",
			Model:             "gpt-4.1-mini",
			TimeoutMs:         6000,
			MaxOutputTokens:   80,
			MaxConcurrent:     4,
			BreakerFailures:   3,
			BreakerCooldownMs: 30000,
		},
		Concierge: ConciergeConfig{
			TimeoutMs:       8000,
			MaxOutputTokens: 180,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "json",
			MaxPromptLog: 200,
		},
	}
}

// Load applies defaults, then the YAML file at path (if any), then
// MATCHMAKER_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envInt("MATCHMAKER_PORT", &cfg.Server.Port)
	envInt("MATCHMAKER_METRICS_PORT", &cfg.Server.MetricsPort)
	envString("MATCHMAKER_ADMIN_TOKEN", &cfg.Server.AdminToken)
	envInt("MATCHMAKER_RATE_LIMIT_PER_MINUTE", &cfg.Server.RateLimitPerMinute)
	envString("MATCHMAKER_DATABASE_URL", &cfg.Database.URL)
	envString("MATCHMAKER_HERMES_URL", &cfg.Hermes.URL)
	envString("MATCHMAKER_PROFILES_PATH", &cfg.Data.ProfilesPath)

	envBool("MATCHMAKER_RATIONALE_ENABLED", &cfg.Rationale.Enabled)
	envString("MATCHMAKER_RATIONALE_PROVIDER", &cfg.Rationale.Provider)
	envString("MATCHMAKER_RATIONALE_API_KEY", &cfg.Rationale.APIKey)
	envString("MATCHMAKER_RATIONALE_MODEL", &cfg.Rationale.Model)
	envString("MATCHMAKER_RATIONALE_BASE_URL", &cfg.Rationale.BaseURL)
	envInt("MATCHMAKER_RATIONALE_TIMEOUT_MS", &cfg.Rationale.TimeoutMs)
	envInt("MATCHMAKER_RATIONALE_MAX_CONCURRENT", &cfg.Rationale.MaxConcurrent)
	provider := strings.ToLower(cfg.Rationale.Provider)
	if cfg.Rationale.APIKey == "" && (provider == "" || provider == "openai") {
		cfg.Rationale.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	envBool("MATCHMAKER_CONCIERGE_ENABLED", &cfg.Concierge.Enabled)
	envString("MATCHMAKER_CONCIERGE_MODEL", &cfg.Concierge.Model)
	envInt("MATCHMAKER_CONCIERGE_TIMEOUT_MS", &cfg.Concierge.TimeoutMs)

	envString("MATCHMAKER_LOG_LEVEL", &cfg.Logging.Level)
	envString("MATCHMAKER_LOG_FORMAT", &cfg.Logging.Format)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
