package matching

import (
	"errors"

	"github.com/MikeSquared-Agency/Matchmaker/internal/rationale"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
)

// ErrProfileNotFound is returned when a requested profile id is absent.
var ErrProfileNotFound = errors.New("profile not found")

// MatchScore is one ranked row for a source profile.
type MatchScore struct {
	TargetID             string            `json:"target_id"`
	TargetName           string            `json:"target_name"`
	PriorityRank         int               `json:"priority_rank"`
	Score                float64           `json:"score"`
	FitScore             float64           `json:"fit_score"`
	ComplementarityScore float64           `json:"complementarity_score"`
	ReadinessScore       float64           `json:"readiness_score"`
	Confidence           float64           `json:"confidence"`
	RiskLevel            scoring.RiskLevel `json:"risk_level"`
	RiskReasons          []string          `json:"risk_reasons"`
	Rationale            string            `json:"rationale"`
}

// PairResult is an unordered pair in the global or non-obvious lists.
type PairResult struct {
	FromID               string            `json:"from_id"`
	FromName             string            `json:"from_name"`
	ToID                 string            `json:"to_id"`
	ToName               string            `json:"to_name"`
	Score                float64           `json:"score"`
	FitScore             float64           `json:"fit_score"`
	ComplementarityScore float64           `json:"complementarity_score"`
	ReadinessScore       float64           `json:"readiness_score"`
	Confidence           float64           `json:"confidence"`
	RiskLevel            scoring.RiskLevel `json:"risk_level"`
	RiskReasons          []string          `json:"risk_reasons"`
	NoveltyScore         *float64          `json:"novelty_score,omitempty"`
	Rationale            string            `json:"rationale"`
}

// Explanation is the full breakdown for a single directed pair.
type Explanation struct {
	FromID        string                 `json:"from_id"`
	ToID          string                 `json:"to_id"`
	Score         float64                `json:"score"`
	Confidence    float64                `json:"confidence"`
	RiskLevel     scoring.RiskLevel      `json:"risk_level"`
	RiskReasons   []string               `json:"risk_reasons"`
	Factors       []scoring.FactorResult `json:"factors"`
	Weights       scoring.WeightSet      `json:"weights"`
	FromRole      scoring.Role           `json:"from_role"`
	ToRole        scoring.Role           `json:"to_role"`
	Rationale     string                 `json:"rationale"`
	RationaleMode rationale.Mode         `json:"rationale_mode"`
}

// RiskDistribution counts per-profile rows by risk tier.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func (d *RiskDistribution) add(level scoring.RiskLevel) {
	switch level {
	case scoring.RiskLow:
		d.Low++
	case scoring.RiskMedium:
		d.Medium++
	case scoring.RiskHigh:
		d.High++
	}
}

func scoresOf(raw scoring.RawScores) rationale.Scores {
	return rationale.Scores{Fit: raw.Fit, Complementarity: raw.Complementarity, Readiness: raw.Readiness}
}
