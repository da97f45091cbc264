package matching

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
	"github.com/MikeSquared-Agency/Matchmaker/internal/rationale"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
)

const (
	nonObviousMaxFit             = 0.12
	nonObviousMinComplementarity = 0.75
	nonObviousMinScore           = 0.4
	noveltyWeight                = 0.55
	compositeWeight              = 0.45
)

// Engine ranks profiles against each other. Scoring is pure; the only
// blocking work is the rationale provider, which is called once per
// returned row.
type Engine struct {
	scorer      *scoring.Scorer
	explainer   rationale.Provider
	logger      *slog.Logger
	parallelism int
}

// NewEngine creates an Engine. A nil provider selects the template tier.
func NewEngine(scorer *scoring.Scorer, explainer rationale.Provider, logger *slog.Logger) *Engine {
	if explainer == nil {
		explainer = rationale.Template{}
	}
	return &Engine{
		scorer:      scorer,
		explainer:   explainer,
		logger:      logger,
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// WithParallelism overrides how many pairs are evaluated at once.
func (e *Engine) WithParallelism(n int) *Engine {
	if n > 0 {
		e.parallelism = n
	}
	return e
}

// scoredPair is an evaluated pair before it is rendered for output.
type scoredPair struct {
	a, b    scoring.Features
	result  scoring.ScoringResult
	novelty float64
	rankKey float64
}

// RankForProfile scores source against every target and returns rows sorted
// by score descending with 1-based ranks. Equal scores keep target order.
func (e *Engine) RankForProfile(ctx context.Context, source profile.Profile, targets []profile.Profile) []MatchScore {
	return e.rank(ctx, scoring.Extract(source), scoring.ExtractAll(targets))
}

func (e *Engine) rank(ctx context.Context, src scoring.Features, targets []scoring.Features) []MatchScore {
	rows := make([]MatchScore, len(targets))
	e.forEach(ctx, len(targets), func(ctx context.Context, i int) {
		tgt := targets[i]
		res := e.scorer.ScorePair(scoring.NewPairContext(src, tgt))
		rows[i] = MatchScore{
			TargetID:             tgt.Profile.ID,
			TargetName:           tgt.Profile.Name,
			Score:                res.Composite,
			FitScore:             res.Fit,
			ComplementarityScore: res.Complementarity,
			ReadinessScore:       res.Readiness,
			Confidence:           res.Confidence,
			RiskLevel:            res.RiskLevel,
			RiskReasons:          res.RiskReasons,
			Rationale:            rationale.Text(ctx, e.explainer, src.Profile, tgt.Profile, scoresOf(res.Raw)),
		}
	})
	pairsScored.WithLabelValues(kindProfile).Add(float64(len(rows)))

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	for i := range rows {
		rows[i].PriorityRank = i + 1
	}
	return rows
}

// GenerateAllMatches ranks every profile against all profiles with a
// different id, keyed by source id.
func (e *Engine) GenerateAllMatches(ctx context.Context, profiles []profile.Profile) map[string][]MatchScore {
	start := time.Now()
	features := scoring.ExtractAll(profiles)
	out := make(map[string][]MatchScore, len(features))
	for _, src := range features {
		out[src.Profile.ID] = e.rank(ctx, src, othersOf(src.Profile.ID, features))
	}
	e.logger.Debug("generated all matches", "profiles", len(profiles), "duration", time.Since(start))
	return out
}

// MatchesFor ranks a single profile, identified by id, against the rest.
func (e *Engine) MatchesFor(ctx context.Context, profiles []profile.Profile, id string) ([]MatchScore, error) {
	features := scoring.ExtractAll(profiles)
	for _, src := range features {
		if src.Profile.ID == id {
			return e.rank(ctx, src, othersOf(id, features)), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
}

func othersOf(id string, features []scoring.Features) []scoring.Features {
	others := make([]scoring.Features, 0, len(features))
	for _, f := range features {
		if f.Profile.ID != id {
			others = append(others, f)
		}
	}
	return others
}

// TopIntroPairs evaluates every unordered pair once and returns the limit
// highest scoring. Ties keep enumeration order.
func (e *Engine) TopIntroPairs(ctx context.Context, profiles []profile.Profile, limit int) []PairResult {
	return e.topPairs(ctx, scoring.ExtractAll(profiles), limit)
}

func (e *Engine) topPairs(ctx context.Context, features []scoring.Features, limit int) []PairResult {
	if limit <= 0 {
		return []PairResult{}
	}
	pairs := e.scorePairs(ctx, features)
	for i := range pairs {
		pairs[i].rankKey = pairs[i].result.Composite
	}
	pairs = selectTop(pairs, limit)
	pairsScored.WithLabelValues(kindTop).Add(float64(len(pairs)))
	return e.render(ctx, pairs, false)
}

// TopNonObviousPairs keeps pairs with little lexical overlap but strong role
// complementarity, ranked by a blend of novelty and score.
func (e *Engine) TopNonObviousPairs(ctx context.Context, profiles []profile.Profile, limit int) []PairResult {
	return e.nonObviousPairs(ctx, scoring.ExtractAll(profiles), limit)
}

func (e *Engine) nonObviousPairs(ctx context.Context, features []scoring.Features, limit int) []PairResult {
	if limit <= 0 {
		return []PairResult{}
	}
	all := e.scorePairs(ctx, features)
	kept := all[:0]
	for _, p := range all {
		r := p.result
		if r.Fit > nonObviousMaxFit || r.Complementarity < nonObviousMinComplementarity || r.Composite < nonObviousMinScore {
			continue
		}
		p.novelty = Novelty(r.Fit, r.Complementarity)
		p.rankKey = noveltyWeight*p.novelty + compositeWeight*r.Composite
		kept = append(kept, p)
	}
	kept = selectTop(kept, limit)
	pairsScored.WithLabelValues(kindNonObvious).Add(float64(len(kept)))
	return e.render(ctx, kept, true)
}

// Novelty rewards low overlap combined with high complementarity.
func Novelty(fit, complementarity float64) float64 {
	return scoring.Round4((1 - fit) * complementarity)
}

func selectTop(pairs []scoredPair, limit int) []scoredPair {
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].rankKey > pairs[j].rankKey })
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// scorePairs evaluates i<j pairs in enumeration order.
func (e *Engine) scorePairs(ctx context.Context, features []scoring.Features) []scoredPair {
	n := len(features)
	if n < 2 {
		return nil
	}
	pairs := make([]scoredPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, scoredPair{a: features[i], b: features[j]})
		}
	}
	e.forEach(ctx, len(pairs), func(_ context.Context, i int) {
		pairs[i].result = e.scorer.ScorePair(scoring.NewPairContext(pairs[i].a, pairs[i].b))
	})
	return pairs
}

// render attaches rationales to the surviving pairs only.
func (e *Engine) render(ctx context.Context, pairs []scoredPair, withNovelty bool) []PairResult {
	out := make([]PairResult, len(pairs))
	e.forEach(ctx, len(pairs), func(ctx context.Context, i int) {
		p := pairs[i]
		r := p.result
		out[i] = PairResult{
			FromID:               p.a.Profile.ID,
			FromName:             p.a.Profile.Name,
			ToID:                 p.b.Profile.ID,
			ToName:               p.b.Profile.Name,
			Score:                r.Composite,
			FitScore:             r.Fit,
			ComplementarityScore: r.Complementarity,
			ReadinessScore:       r.Readiness,
			Confidence:           r.Confidence,
			RiskLevel:            r.RiskLevel,
			RiskReasons:          r.RiskReasons,
			Rationale:            rationale.Text(ctx, e.explainer, p.a.Profile, p.b.Profile, scoresOf(r.Raw)),
		}
		if withNovelty {
			novelty := p.novelty
			out[i].NoveltyScore = &novelty
		}
	})
	return out
}

// Explain scores one directed pair and returns the factor breakdown along
// with the rationale tier that fired.
func (e *Engine) Explain(ctx context.Context, profiles []profile.Profile, fromID, toID string) (Explanation, error) {
	from, ok := profile.Find(profiles, fromID)
	if !ok {
		return Explanation{}, fmt.Errorf("%w: %s", ErrProfileNotFound, fromID)
	}
	to, ok := profile.Find(profiles, toID)
	if !ok {
		return Explanation{}, fmt.Errorf("%w: %s", ErrProfileNotFound, toID)
	}

	a, b := scoring.Extract(from), scoring.Extract(to)
	res := e.scorer.ScorePair(scoring.NewPairContext(a, b))
	pairsScored.WithLabelValues(kindExplain).Inc()
	why := e.explainer.Explain(ctx, from, to, scoresOf(res.Raw))

	return Explanation{
		FromID:        fromID,
		ToID:          toID,
		Score:         res.Composite,
		Confidence:    res.Confidence,
		RiskLevel:     res.RiskLevel,
		RiskReasons:   res.RiskReasons,
		Factors:       res.Factors,
		Weights:       e.scorer.Weights(),
		FromRole:      a.Role,
		ToRole:        b.Role,
		Rationale:     why.Text,
		RationaleMode: why.Mode,
	}, nil
}

// forEach runs fn for 0..n-1 with bounded parallelism. Each call writes to
// its own index, so output order does not depend on scheduling.
func (e *Engine) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
