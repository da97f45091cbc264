// Command generate-matches scores a profiles file offline and writes the
// per-profile rankings, top intro pairs and non-obvious pairs as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/MikeSquared-Agency/Matchmaker/internal/config"
	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
	"github.com/MikeSquared-Agency/Matchmaker/internal/rationale"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
)

type output struct {
	Matches       map[string][]matching.MatchScore `json:"matches"`
	TopIntroPairs []matching.PairResult            `json:"top_intro_pairs"`
	NonObvious    []matching.PairResult            `json:"top_non_obvious_pairs"`
}

func main() {
	in := flag.String("in", "data/profiles.json", "profiles file to score")
	out := flag.String("out", "data/match_results.json", "where to write results")
	limit := flag.Int("limit", matching.DashboardTopPairs, "number of top intro pairs")
	configPath := flag.String("config", "", "optional config file for weights and rationale settings")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := run(context.Background(), *in, *out, *limit, *configPath, logger); err != nil {
		fmt.Fprintln(os.Stderr, "generate-matches:", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote match results to %s\n", *out)
}

func run(ctx context.Context, in, out string, limit int, configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	profiles, err := profile.LoadFile(in)
	if err != nil {
		return err
	}
	if err := profile.ValidateAll(profiles); err != nil {
		return err
	}
	profiles = profile.EnrichAll(profiles)

	scorer := scoring.NewScorer(cfg.Scoring.Weights, logger)
	engine := matching.NewEngine(scorer, rationale.NewProvider(ctx, cfg.RationaleSettings(), logger), logger)

	result := output{
		Matches:       engine.GenerateAllMatches(ctx, profiles),
		TopIntroPairs: engine.TopIntroPairs(ctx, profiles, limit),
		NonObvious:    engine.TopNonObviousPairs(ctx, profiles, matching.DashboardNonObviousPairs),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return os.WriteFile(out, data, 0o644)
}
