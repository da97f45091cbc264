package scoring

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func nadia() profile.Profile {
	return profile.Profile{
		ID:           "nadia",
		Name:         "Nadia",
		Title:        "CTO",
		Organization: "NexaLayer",
		Mandate:      "institutional custody deployment",
	}
}

func marcus() profile.Profile {
	return profile.Profile{
		ID:           "marcus",
		Name:         "Marcus",
		Title:        "Partner",
		Organization: "Meridian Ventures",
		Mandate:      "deploy capital into regulated custody pilots",
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}
	if math.Abs(w.Sum()-1.0) > 0.001 {
		t.Errorf("default weights sum to %f, expected 1.0", w.Sum())
	}
}

func TestWeightsValidate(t *testing.T) {
	assert.Error(t, WeightSet{Fit: 0.5, Complementarity: 0.5, Readiness: 0.5}.Validate())
	assert.Error(t, WeightSet{Fit: -0.1, Complementarity: 0.6, Readiness: 0.5}.Validate())
	assert.NoError(t, WeightSet{Fit: 0.5, Complementarity: 0.3, Readiness: 0.2}.Validate())
}

func TestScorePairScenario(t *testing.T) {
	s := NewScorer(DefaultWeights(), discardLogger())
	a, b := Extract(nadia()), Extract(marcus())

	require.Equal(t, RoleBuilder, a.Role)
	require.Equal(t, RoleInvestor, b.Role)

	r := s.ScorePair(NewPairContext(a, b))

	// custody is the only shared keyword: 1 of 7
	assert.InDelta(t, 0.1429, r.Fit, 1e-9)
	assert.Equal(t, 1.0, r.Complementarity)
	// 0.55 (deploy) and 0.75 (deploy + pilot)
	assert.InDelta(t, 0.65, r.Readiness, 1e-9)
	assert.InDelta(t, 0.5696, r.Composite, 1e-9)
	assert.InDelta(t, 0.665, r.Confidence, 1e-9)
	assert.Equal(t, RiskLow, r.RiskLevel)
	assert.Equal(t, []string{ReasonStrongFitProfile}, r.RiskReasons)

	require.Len(t, r.Factors, 3)
	assert.Equal(t, "fit", r.Factors[0].Name)
	assert.Equal(t, 0.40, r.Factors[0].Weight)
	assert.Equal(t, "1 shared of 7 keywords", r.Factors[0].Reason)
	assert.Equal(t, "builder/investor", r.Factors[1].Reason)
	assert.InDelta(t, 1.0/7, r.Raw.Fit, 1e-12)
}

func TestScorePairSymmetric(t *testing.T) {
	s := NewScorer(DefaultWeights(), discardLogger())
	a, b := Extract(nadia()), Extract(marcus())

	ab := s.ScorePair(NewPairContext(a, b))
	ba := s.ScorePair(NewPairContext(b, a))
	assert.Equal(t, ab.Composite, ba.Composite)
	assert.Equal(t, ab.Confidence, ba.Confidence)
	assert.Equal(t, ab.RiskLevel, ba.RiskLevel)
}

func TestScorePairEmptyProfiles(t *testing.T) {
	s := NewScorer(DefaultWeights(), discardLogger())
	a := Extract(profile.Profile{ID: "a", Name: "A"})
	b := Extract(profile.Profile{ID: "b", Name: "B"})

	r := s.ScorePair(NewPairContext(a, b))
	assert.Equal(t, 0.0, r.Fit)
	assert.Equal(t, 0.45, r.Complementarity)
	assert.Equal(t, 0.2, r.Readiness)
	// 0.35*0.45 + 0.25*0.2
	assert.InDelta(t, 0.2075, r.Composite, 1e-9)
	assert.InDelta(t, 0.57, r.Confidence, 1e-9)
	assert.Equal(t, RiskHigh, r.RiskLevel)
	assert.Equal(t, []string{ReasonLowOverlap, ReasonLowReadiness, ReasonLowConfidence}, r.RiskReasons)
	assert.Equal(t, "no keyword signal", r.Factors[0].Reason)
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer(DefaultWeights(), discardLogger())
	full := profile.Profile{
		ID: "x", Name: "X", Title: "CEO",
		Mandate: "deploy series pilot", Product: "live raised partnership",
	}
	profiles := []profile.Profile{
		nadia(), marcus(), full,
		{ID: "e", Name: "E"},
		{ID: "r", Name: "R", Organization: "Deutsche Bundesbank", Thesis: "invest"},
	}
	feats := ExtractAll(profiles)
	for i := range feats {
		for j := range feats {
			r := s.ScorePair(NewPairContext(feats[i], feats[j]))
			assert.GreaterOrEqual(t, r.Composite, 0.0)
			assert.LessOrEqual(t, r.Composite, 1.0)
			assert.GreaterOrEqual(t, r.Confidence, 0.55)
			assert.LessOrEqual(t, r.Confidence, 0.98)
			assert.GreaterOrEqual(t, r.Fit, 0.0)
			assert.LessOrEqual(t, r.Fit, 1.0)
		}
	}

	self := s.ScorePair(NewPairContext(Extract(full), Extract(full)))
	assert.Equal(t, 1.0, self.Fit)
	assert.Equal(t, 1.0, self.Readiness)
	assert.Equal(t, 0.98, self.Confidence)
}

func TestConfidenceCeiling(t *testing.T) {
	assert.Equal(t, 0.98, Confidence(1, 1))
	assert.InDelta(t, 0.55, Confidence(0, 0), 1e-12)
}

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name       string
		fit        float64
		readiness  float64
		confidence float64
		level      RiskLevel
		reasons    []string
	}{
		{"all clear", 0.2, 0.8, 0.7, RiskLow, []string{ReasonStrongFitProfile}},
		{"low overlap only", 0.05, 0.8, 0.7, RiskMedium, []string{ReasonLowOverlap}},
		{"low readiness only", 0.2, 0.5, 0.7, RiskMedium, []string{ReasonLowReadiness}},
		{"low confidence only", 0.2, 0.8, 0.6, RiskMedium, []string{ReasonLowConfidence}},
		{"two reasons", 0.0, 0.5, 0.7, RiskHigh, []string{ReasonLowOverlap, ReasonLowReadiness}},
		{"thresholds are exclusive", 0.06, 0.55, 0.62, RiskLow, []string{ReasonStrongFitProfile}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, reasons := ClassifyRisk(tt.fit, tt.readiness, tt.confidence)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.reasons, reasons)

			again, againReasons := ClassifyRisk(tt.fit, tt.readiness, tt.confidence)
			assert.Equal(t, level, again)
			assert.Equal(t, reasons, againReasons)
		})
	}
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.5696, Round4(0.56964285))
	assert.Equal(t, 0.1429, Round4(1.0/7))
	assert.Equal(t, 0.0, Round4(0))
}
