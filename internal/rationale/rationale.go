package rationale

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/llm"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

// Mode reports which tier produced a rationale.
type Mode string

const (
	ModeTemplate Mode = "template"
	ModeLLM      Mode = "llm"
)

// Scores are the three factor values a rationale explains.
type Scores struct {
	Fit             float64 `json:"fit"`
	Complementarity float64 `json:"complementarity"`
	Readiness       float64 `json:"readiness"`
}

// Explanation is a rationale plus the tier that produced it.
type Explanation struct {
	Text string `json:"rationale"`
	Mode Mode   `json:"mode"`
}

// Provider explains why a pair is worth introducing. Implementations never
// fail: the returned text is always non-empty.
type Provider interface {
	Explain(ctx context.Context, a, b profile.Profile, s Scores) Explanation
}

// Config governs the external tier. The zero value selects the template tier.
type Config struct {
	Enabled         bool
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxOutputTokens int
	MaxConcurrent   int
	BreakerFailures uint32
	BreakerCooldown time.Duration
	MaxPromptLog    int
}

// External reports whether the external tier should be attempted: it must be
// switched on and have a credential.
func (c Config) External() bool {
	return c.Enabled && c.APIKey != ""
}

// NewProvider selects the tier from cfg. A misconfigured backend degrades to
// the template tier with a warning rather than failing startup.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) Provider {
	if !cfg.External() {
		logger.Info("rationale tier selected", "mode", ModeTemplate)
		return Template{}
	}
	client, err := llm.NewClient(ctx, llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		logger.Warn("rationale backend unavailable, using template tier", "provider", cfg.Provider, "error", err)
		return Template{}
	}
	logger.Info("rationale tier selected", "mode", ModeLLM, "provider", providerLabel(cfg.Provider), "timeout", cfg.Timeout)
	return NewGenerative(client, cfg, logger)
}

func providerLabel(p string) string {
	if p == "" {
		return "openai"
	}
	return p
}

// Text is a convenience for callers that only need the rationale string.
func Text(ctx context.Context, p Provider, a, b profile.Profile, s Scores) string {
	return p.Explain(ctx, a, b, s).Text
}

func (s Scores) key() string {
	return fmt.Sprintf("%.4f|%.4f|%.4f", s.Fit, s.Complementarity, s.Readiness)
}
