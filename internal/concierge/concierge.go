// Package concierge answers free-form organizer questions about the current
// matchmaking state. Like rationales it has two tiers: a text generator when
// configured, and a deterministic reply otherwise.
package concierge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/Matchmaker/internal/llm"
	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

// Mode reports which tier produced a reply.
type Mode string

const (
	ModeLLM      Mode = "llm"
	ModeFallback Mode = "fallback"
)

const (
	defaultTimeout         = 8 * time.Second
	defaultMaxOutputTokens = 180
	maxHistoryTurns        = 6
	promptTopPairs         = 3
	promptNonObviousPairs  = 2

	emptyMessageReply = "Please share a specific ask (e.g., 'suggest 3 intros for Amara')."
	systemPrompt      = "You are an AI concierge for a premium conference matchmaking engine. " +
		"Give concise, practical recommendations with explicit next actions."
)

var repliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "matchmaker_concierge_replies_total",
	Help: "Concierge replies by tier.",
}, []string{"mode"})

// Turn is one prior message in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is an organizer question plus the context it refers to. Profile
// and Snapshot are optional.
type Request struct {
	Message  string
	Profile  *profile.Profile
	Snapshot *matching.Snapshot
	History  []Turn
}

// Reply is the concierge answer.
type Reply struct {
	Reply       string `json:"reply"`
	Mode        Mode   `json:"mode"`
	HistoryUsed int    `json:"history_used"`
}

// Config governs the generated tier.
type Config struct {
	Enabled         bool
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxOutputTokens int
}

// Concierge produces replies. A nil client means fallback only.
type Concierge struct {
	client    llm.Client
	timeout   time.Duration
	maxTokens int
	logger    *slog.Logger
}

// New builds a Concierge from cfg. The generated tier is used only when it is
// enabled and a credential is present.
func New(ctx context.Context, cfg Config, logger *slog.Logger) *Concierge {
	if !cfg.Enabled || cfg.APIKey == "" {
		return NewWithClient(nil, cfg, logger)
	}
	client, err := llm.NewClient(ctx, llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		logger.Warn("concierge backend unavailable, using fallback replies", "provider", cfg.Provider, "error", err)
		client = nil
	}
	return NewWithClient(client, cfg, logger)
}

// NewWithClient wraps an existing client.
func NewWithClient(client llm.Client, cfg Config, logger *slog.Logger) *Concierge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	return &Concierge{client: client, timeout: cfg.Timeout, maxTokens: cfg.MaxOutputTokens, logger: logger}
}

// Reply answers req. It never fails: generation errors degrade to the
// deterministic reply.
func (c *Concierge) Reply(ctx context.Context, req Request) Reply {
	if strings.TrimSpace(req.Message) == "" {
		repliesTotal.WithLabelValues(string(ModeFallback)).Inc()
		return Reply{Reply: emptyMessageReply, Mode: ModeFallback, HistoryUsed: len(req.History)}
	}

	if c.client != nil {
		text, err := c.generate(ctx, req)
		if err == nil {
			repliesTotal.WithLabelValues(string(ModeLLM)).Inc()
			return Reply{Reply: text, Mode: ModeLLM, HistoryUsed: len(recent(req.History))}
		}
		c.logger.Warn("concierge generation failed, using fallback", "error", err)
	}

	repliesTotal.WithLabelValues(string(ModeFallback)).Inc()
	return Reply{Reply: FallbackText(req), Mode: ModeFallback, HistoryUsed: len(req.History)}
}

func (c *Concierge) generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt, err := buildPrompt(req)
	if err != nil {
		return "", fmt.Errorf("build concierge prompt: %w", err)
	}
	text, err := c.client.Generate(ctx, llm.Request{System: systemPrompt, Prompt: prompt, MaxTokens: c.maxTokens})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

// FallbackText is the deterministic reply.
func FallbackText(req Request) string {
	parts := []string{"Concierge recommendation: start with high-confidence, low-risk intros first, then add one non-obvious pair."}
	if p := req.Profile; p != nil {
		name := p.Name
		if name == "" {
			name = "this attendee"
		}
		wants := strings.Join(firstN(p.LookingFor, 2), ", ")
		if wants == "" {
			wants = "their strategic priorities"
		}
		parts = append(parts, fmt.Sprintf("For %s, prioritize meetings aligned with %s.", name, wants))
	}
	if s := req.Snapshot; s != nil && len(s.TopPairs) > 0 {
		top := s.TopPairs[0]
		parts = append(parts, fmt.Sprintf("Current top intro candidate is %s ↔ %s.", top.FromName, top.ToName))
	}
	parts = append(parts, fmt.Sprintf("Next step based on your request '%s': shortlist 3 intros and send tailored context notes.", strings.TrimSpace(req.Message)))
	return strings.Join(parts, " ")
}

type overview struct {
	AttendeeCount    int                       `json:"attendee_count"`
	RiskDistribution matching.RiskDistribution `json:"risk_distribution"`
}

type promptPayload struct {
	Message            string                `json:"message"`
	Profile            *profile.Profile      `json:"profile,omitempty"`
	Overview           *overview             `json:"dashboard_overview,omitempty"`
	TopIntroPairs      []matching.PairResult `json:"top_intro_pairs,omitempty"`
	TopNonObviousPairs []matching.PairResult `json:"top_non_obvious_pairs,omitempty"`
	History            []Turn                `json:"history,omitempty"`
}

func buildPrompt(req Request) (string, error) {
	payload := promptPayload{
		Message: req.Message,
		Profile: req.Profile,
		History: recent(req.History),
	}
	if s := req.Snapshot; s != nil {
		payload.Overview = &overview{AttendeeCount: s.AttendeeCount, RiskDistribution: s.RiskDistribution}
		payload.TopIntroPairs = firstN(s.TopPairs, promptTopPairs)
		payload.TopNonObviousPairs = firstN(s.NonObviousPairs, promptNonObviousPairs)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func recent(history []Turn) []Turn {
	if len(history) > maxHistoryTurns {
		return history[len(history)-maxHistoryTurns:]
	}
	return history
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
