package rationale

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"

	"github.com/MikeSquared-Agency/Matchmaker/internal/llm"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

const (
	defaultTimeout         = 6 * time.Second
	defaultMaxOutputTokens = 80
	defaultMaxConcurrent   = 4
	defaultBreakerFailures = 3
	defaultBreakerCooldown = 30 * time.Second
	defaultMaxPromptLog    = 200
	maxCacheEntries        = 10000

	systemPrompt = "You write concise B2B matchmaking rationales for conference organizers."
	taskPrompt   = "Write one concise sentence explaining why this intro is high-value and near-term actionable."
)

// Generative is the external tier. Each call makes exactly one attempt
// bounded by the configured timeout; any failure substitutes the template.
// Successful texts are memoised per unordered pair and score triple, so bulk
// ranking asks the backend at most once per pair.
type Generative struct {
	client       llm.Client
	fallback     Template
	provider     string
	timeout      time.Duration
	maxTokens    int
	maxPromptLog int
	sem          *semaphore.Weighted
	breaker      *gobreaker.CircuitBreaker[string]
	logger       *slog.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewGenerative wraps client with timeout, concurrency bound, circuit breaker
// and memoisation. Zero config values take defaults.
func NewGenerative(client llm.Client, cfg Config, logger *slog.Logger) *Generative {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = defaultBreakerCooldown
	}
	if cfg.MaxPromptLog <= 0 {
		cfg.MaxPromptLog = defaultMaxPromptLog
	}
	provider := providerLabel(cfg.Provider)

	g := &Generative{
		client:       client,
		provider:     provider,
		timeout:      cfg.Timeout,
		maxTokens:    cfg.MaxOutputTokens,
		maxPromptLog: cfg.MaxPromptLog,
		sem:          semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger:       logger,
		cache:        make(map[string]string),
	}
	failures := cfg.BreakerFailures
	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "rationale-" + provider,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("rationale circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

func (g *Generative) Explain(ctx context.Context, a, b profile.Profile, s Scores) Explanation {
	key := pairKey(a, b, s)
	if text, ok := g.lookup(key); ok {
		rationaleTotal.WithLabelValues(g.provider, string(ModeLLM), outcomeCached).Inc()
		return Explanation{Text: text, Mode: ModeLLM}
	}

	text, err := g.generate(ctx, a, b, s)
	if err != nil {
		outcome := classifyError(err)
		g.logger.Warn("rationale generation failed, using template",
			"from", a.ID, "to", b.ID, "provider", g.provider, "outcome", outcome, "error", err)
		rationaleTotal.WithLabelValues(g.provider, string(ModeTemplate), outcome).Inc()
		return g.fallback.Explain(ctx, a, b, s)
	}

	g.store(key, text)
	rationaleTotal.WithLabelValues(g.provider, string(ModeLLM), outcomeOK).Inc()
	return Explanation{Text: text, Mode: ModeLLM}
}

// BreakerState exposes the circuit breaker state for health reporting.
func (g *Generative) BreakerState() string {
	return g.breaker.State().String()
}

type generation struct {
	text string
	err  error
}

func (g *Generative) generate(ctx context.Context, a, b profile.Profile, s Scores) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt, err := buildPrompt(a, b, s)
	if err != nil {
		return "", err
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}

	g.logger.Debug("requesting rationale",
		"from", a.ID, "to", b.ID,
		"prompt_preview", truncateForLog(prompt, g.maxPromptLog))

	// The call runs on its own goroutine so a backend that ignores ctx still
	// cannot hold the caller past the deadline. The slot is released only when
	// the call really returns.
	done := make(chan generation, 1)
	go func() {
		defer g.sem.Release(1)
		start := time.Now()
		text, err := g.breaker.Execute(func() (string, error) {
			text, err := g.client.Generate(ctx, llm.Request{
				System:    systemPrompt,
				Prompt:    prompt,
				MaxTokens: g.maxTokens,
			})
			if err != nil {
				return "", err
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return "", llm.ErrEmptyResponse
			}
			return text, nil
		})
		rationaleDuration.WithLabelValues(g.provider).Observe(time.Since(start).Seconds())
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *Generative) lookup(key string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	text, ok := g.cache[key]
	return text, ok
}

func (g *Generative) store(key, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.cache) >= maxCacheEntries {
		g.cache = make(map[string]string)
	}
	g.cache[key] = text
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return outcomeBreakerOpen
	case errors.Is(err, llm.ErrEmptyResponse):
		return outcomeEmpty
	default:
		return outcomeError
	}
}

// pairKey ignores direction: A↔B and B↔A share one cached rationale.
func pairKey(a, b profile.Profile, s Scores) string {
	lo, hi := a.ID, b.ID
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + "::" + hi + "|" + s.key()
}

type promptParty struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Org  string `json:"org"`
}

type promptPayload struct {
	Source promptParty `json:"source"`
	Target promptParty `json:"target"`
	Scores Scores      `json:"scores"`
	Task   string      `json:"task"`
}

func buildPrompt(a, b profile.Profile, s Scores) (string, error) {
	data, err := json.Marshal(promptPayload{
		Source: promptParty{Name: a.Name, Role: a.Title, Org: a.Organization},
		Target: promptParty{Name: b.Name, Role: b.Title, Org: b.Organization},
		Scores: s,
		Task:   taskPrompt,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// truncateForLog shortens s to limit runes, appending an ellipsis when cut.
func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
