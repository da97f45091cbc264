package config

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"MATCHMAKER_PORT", "MATCHMAKER_METRICS_PORT", "MATCHMAKER_ADMIN_TOKEN",
	"MATCHMAKER_RATE_LIMIT_PER_MINUTE", "MATCHMAKER_DATABASE_URL", "MATCHMAKER_HERMES_URL",
	"MATCHMAKER_PROFILES_PATH", "MATCHMAKER_RATIONALE_ENABLED", "MATCHMAKER_RATIONALE_PROVIDER",
	"MATCHMAKER_RATIONALE_API_KEY", "MATCHMAKER_RATIONALE_MODEL", "MATCHMAKER_RATIONALE_BASE_URL",
	"MATCHMAKER_RATIONALE_TIMEOUT_MS", "MATCHMAKER_RATIONALE_MAX_CONCURRENT",
	"MATCHMAKER_CONCIERGE_ENABLED", "MATCHMAKER_CONCIERGE_MODEL", "MATCHMAKER_CONCIERGE_TIMEOUT_MS",
	"MATCHMAKER_LOG_LEVEL", "MATCHMAKER_LOG_FORMAT", "OPENAI_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8600 {
		t.Errorf("expected port 8600, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8601 {
		t.Errorf("expected metrics port 8601, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Database.URL != "" {
		t.Errorf("expected in-memory store by default, got %s", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "" {
		t.Errorf("expected events disabled by default, got %s", cfg.Hermes.URL)
	}
	if cfg.Data.ProfilesPath != "data/profiles.json" {
		t.Errorf("expected seed path, got %s", cfg.Data.ProfilesPath)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("expected info/json logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}

	w := cfg.Scoring.Weights
	if math.Abs(w.Fit-0.40) > 0.001 || math.Abs(w.Complementarity-0.35) > 0.001 || math.Abs(w.Readiness-0.25) > 0.001 {
		t.Errorf("unexpected default weights: %+v", w)
	}

	r := cfg.RationaleSettings()
	if r.Enabled || r.External() {
		t.Error("expected rationale generator disabled by default")
	}
	if r.Timeout != 6*time.Second {
		t.Errorf("expected rationale timeout 6s, got %v", r.Timeout)
	}
	if r.BreakerCooldown != 30*time.Second {
		t.Errorf("expected breaker cooldown 30s, got %v", r.BreakerCooldown)
	}
	if r.MaxOutputTokens != 80 || r.MaxConcurrent != 4 || r.BreakerFailures != 3 || r.MaxPromptLog != 200 {
		t.Errorf("unexpected rationale defaults: %+v", r)
	}

	c := cfg.ConciergeSettings()
	if c.Enabled {
		t.Error("expected concierge generator disabled by default")
	}
	if c.Timeout != 8*time.Second || c.MaxOutputTokens != 180 {
		t.Errorf("unexpected concierge defaults: %+v", c)
	}
	if c.Model != "gpt-4.1-mini" {
		t.Errorf("expected concierge to inherit rationale model, got %s", c.Model)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATCHMAKER_PORT", "9000")
	t.Setenv("MATCHMAKER_METRICS_PORT", "9001")
	t.Setenv("MATCHMAKER_ADMIN_TOKEN", "secret-token")
	t.Setenv("MATCHMAKER_DATABASE_URL", "postgres://localhost/matchmaker_test")
	t.Setenv("MATCHMAKER_HERMES_URL", "nats://nats:4222")
	t.Setenv("MATCHMAKER_RATIONALE_ENABLED", "true")
	t.Setenv("MATCHMAKER_RATIONALE_PROVIDER", "claude")
	t.Setenv("MATCHMAKER_RATIONALE_API_KEY", "sk-test")
	t.Setenv("MATCHMAKER_RATIONALE_TIMEOUT_MS", "2500")
	t.Setenv("MATCHMAKER_CONCIERGE_ENABLED", "1")
	t.Setenv("MATCHMAKER_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected ports 9000/9001, got %d/%d", cfg.Server.Port, cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/matchmaker_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}

	r := cfg.RationaleSettings()
	if !r.External() {
		t.Error("expected rationale generator enabled with key")
	}
	if r.Provider != "claude" || r.Timeout != 2500*time.Millisecond {
		t.Errorf("unexpected rationale settings: %+v", r)
	}
	c := cfg.ConciergeSettings()
	if !c.Enabled || c.APIKey != "sk-test" || c.Provider != "claude" {
		t.Errorf("unexpected concierge settings: %+v", c)
	}
	if cfg.Logging.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Logging.SlogLevel())
	}
}

func TestOpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Rationale.APIKey != "sk-fallback" {
		t.Errorf("expected fallback key, got '%s'", cfg.Rationale.APIKey)
	}
	if cfg.RationaleSettings().External() {
		t.Error("a credential alone must not enable the generator")
	}

	t.Setenv("MATCHMAKER_RATIONALE_API_KEY", "sk-explicit")
	cfg, _ = Load("")
	if cfg.Rationale.APIKey != "sk-explicit" {
		t.Errorf("expected explicit key to win, got '%s'", cfg.Rationale.APIKey)
	}
}

func TestOpenAIKeyFallbackOnlyForOpenAI(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("MATCHMAKER_RATIONALE_PROVIDER", "claude")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Rationale.APIKey != "" {
		t.Errorf("an OpenAI key must not be sent to another provider, got '%s'", cfg.Rationale.APIKey)
	}

	t.Setenv("MATCHMAKER_RATIONALE_PROVIDER", "OpenAI")
	cfg, _ = Load("")
	if cfg.Rationale.APIKey != "sk-openai" {
		t.Errorf("expected fallback key for openai, got '%s'", cfg.Rationale.APIKey)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "matchmaker.yaml")
	yaml := `
server:
  port: 7000
  metrics_port: 7001
scoring:
  weights:
    fit: 0.5
    complementarity: 0.3
    readiness: 0.2
rationale:
  enabled: true
  provider: gemini
  api_key: g-key
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected unset fields to keep defaults, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Scoring.Weights.Fit != 0.5 {
		t.Errorf("expected fit weight 0.5, got %f", cfg.Scoring.Weights.Fit)
	}
	if cfg.Rationale.Provider != "gemini" || cfg.Rationale.TimeoutMs != 6000 {
		t.Errorf("unexpected rationale section: %+v", cfg.Rationale)
	}
	if cfg.Logging.SlogLevel() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.Logging.SlogLevel())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cases := map[string]string{
		"weights":    "scoring:\n  weights:\n    fit: 0.9\n    complementarity: 0.9\n    readiness: 0.9\n",
		"same ports": "server:\n  port: 7000\n  metrics_port: 7000\n",
		"bad yaml":   "server: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
