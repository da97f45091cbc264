package scoring

import (
	"fmt"
)

// FactorResult captures one factor's contribution to the composite score.
type FactorResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// PairContext bundles the precomputed features of both sides of a pair.
type PairContext struct {
	A Features
	B Features
}

// NewPairContext builds a context from two feature sets.
func NewPairContext(a, b Features) *PairContext {
	return &PairContext{A: a, B: b}
}

// --- Individual factor calculators ---

// FitFactor is the Jaccard overlap of both sides' keyword sets.
func FitFactor(pc *PairContext) FactorResult {
	if pc.A.Tokens.Len() == 0 || pc.B.Tokens.Len() == 0 {
		return FactorResult{Name: "fit", Score: 0, Reason: "no keyword signal"}
	}
	shared := SharedTokens(pc.A.Tokens, pc.B.Tokens)
	union := pc.A.Tokens.Len() + pc.B.Tokens.Len() - shared
	return FactorResult{
		Name:   "fit",
		Score:  Fit(pc.A.Tokens, pc.B.Tokens),
		Reason: fmt.Sprintf("%d shared of %d keywords", shared, union),
	}
}

// ComplementarityFactor looks up the role pair in the complementarity table.
func ComplementarityFactor(pc *PairContext) FactorResult {
	return FactorResult{
		Name:   "complementarity",
		Score:  Complementarity(pc.A.Role, pc.B.Role),
		Reason: string(pc.A.Role) + "/" + string(pc.B.Role),
	}
}

// ReadinessFactor averages both sides' execution readiness.
func ReadinessFactor(pc *PairContext) FactorResult {
	return FactorResult{
		Name:   "readiness",
		Score:  clamp(PairReadiness(pc.A.Readiness, pc.B.Readiness), 0, 1),
		Reason: fmt.Sprintf("%.2f and %.2f", pc.A.Readiness, pc.B.Readiness),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
