package rationale

import (
	"context"
	"strings"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

const (
	templateFitThreshold        = 0.2
	templateComplementThreshold = 0.85
	templateReadinessThreshold  = 0.75

	reasonStrongOverlap   = "strong thesis overlap"
	reasonComplementarity = "high strategic complementarity"
	reasonReadiness       = "both sides show near-term execution readiness"
	reasonAdjacent        = "adjacent priorities with potential non-obvious collaboration"

	templateSuffix = ". Recommended for a high-value intro based on product-investor-regulatory fit."
)

// Template is the deterministic tier. It is always available.
type Template struct{}

func (Template) Explain(_ context.Context, a, b profile.Profile, s Scores) Explanation {
	return Explanation{Text: TemplateText(a, b, s), Mode: ModeTemplate}
}

// TemplateText builds the rationale from threshold rules alone.
func TemplateText(a, b profile.Profile, s Scores) string {
	var reasons []string
	if s.Fit >= templateFitThreshold {
		reasons = append(reasons, reasonStrongOverlap)
	}
	if s.Complementarity >= templateComplementThreshold {
		reasons = append(reasons, reasonComplementarity)
	}
	if s.Readiness >= templateReadinessThreshold {
		reasons = append(reasons, reasonReadiness)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, reasonAdjacent)
	}
	return a.Name + " ↔ " + b.Name + ": " + strings.Join(reasons, ", ") + templateSuffix
}
