package scoring

import (
	"log/slog"
	"math"
)

const (
	confidenceBase      = 0.55
	confidenceFitGain   = 0.35
	confidenceReadyGain = 0.10
	confidenceCeiling   = 0.98
)

// ScoringResult is the full numeric outcome for one pair. Reported values are
// rounded to four decimal places; Raw keeps the unrounded factor scores for
// callers that threshold on them (the template rationale does).
type ScoringResult struct {
	Composite       float64        `json:"score"`
	Fit             float64        `json:"fit_score"`
	Complementarity float64        `json:"complementarity_score"`
	Readiness       float64        `json:"readiness_score"`
	Confidence      float64        `json:"confidence"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	RiskReasons     []string       `json:"risk_reasons"`
	Factors         []FactorResult `json:"factors"`
	Raw             RawScores      `json:"-"`
}

// RawScores are the unrounded factor values.
type RawScores struct {
	Fit             float64
	Complementarity float64
	Readiness       float64
}

// Scorer orchestrates the three-factor weighted scoring engine.
type Scorer struct {
	weights WeightSet
	logger  *slog.Logger
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(weights WeightSet, logger *slog.Logger) *Scorer {
	return &Scorer{weights: weights, logger: logger}
}

// Weights returns the weights in use.
func (s *Scorer) Weights() WeightSet { return s.weights }

// ScorePair computes composite score, confidence and risk for one pair.
// It is pure: identical features always give identical results.
func (s *Scorer) ScorePair(pc *PairContext) ScoringResult {
	factors := []FactorResult{
		FitFactor(pc),
		ComplementarityFactor(pc),
		ReadinessFactor(pc),
	}
	weights := s.weights.asList()

	var total float64
	for i := range factors {
		factors[i].Weight = weights[i]
		factors[i].Weighted = factors[i].Score * weights[i]
		total += factors[i].Weighted
	}

	fit, comp, ready := factors[0].Score, factors[1].Score, factors[2].Score
	result := ScoringResult{
		Composite:       Round4(clamp(total, 0, 1)),
		Fit:             Round4(fit),
		Complementarity: Round4(comp),
		Readiness:       Round4(ready),
		Confidence:      Round4(Confidence(fit, ready)),
		Factors:         factors,
		Raw:             RawScores{Fit: fit, Complementarity: comp, Readiness: ready},
	}
	result.RiskLevel, result.RiskReasons = ClassifyRisk(result.Fit, result.Readiness, result.Confidence)
	return result
}

// Confidence rises with fit and readiness but never reaches certainty.
func Confidence(fit, readiness float64) float64 {
	return math.Min(confidenceBase+confidenceFitGain*fit+confidenceReadyGain*readiness, confidenceCeiling)
}

// Round4 rounds to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
