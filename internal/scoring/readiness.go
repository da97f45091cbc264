package scoring

import (
	"strings"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

const (
	readinessBase = 0.2
	readinessCap  = 1.0
)

// readinessSignals are checked independently; each group adds its boost once.
var readinessSignals = []struct {
	keywords []string
	boost    float64
}{
	{[]string{"deploy", "invest"}, 0.35},
	{[]string{"series", "raised", "live"}, 0.25},
	{[]string{"pilot", "partnership", "co-invest"}, 0.20},
}

// Readiness estimates near-term execution capacity from keywords in mandate,
// product, thesis and looking_for.
func Readiness(p profile.Profile) float64 {
	text := strings.ToLower(strings.Join([]string{
		p.Mandate,
		p.Product,
		p.Thesis,
		strings.Join(p.LookingFor, " "),
	}, " "))

	score := readinessBase
	for _, sig := range readinessSignals {
		if containsAny(text, sig.keywords) {
			score += sig.boost
		}
	}
	return min(score, readinessCap)
}

// PairReadiness is the mean of both sides' readiness.
func PairReadiness(a, b float64) float64 {
	return (a + b) / 2
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Features caches the per-profile inputs to pair scoring so they are computed
// once per profile rather than once per pair.
type Features struct {
	Profile   profile.Profile
	Tokens    TokenSet
	Role      Role
	Readiness float64
}

// Extract computes Features for one profile.
func Extract(p profile.Profile) Features {
	return Features{
		Profile:   p,
		Tokens:    Tokens(p),
		Role:      ClassifyRole(p),
		Readiness: Readiness(p),
	}
}

// ExtractAll computes Features for every profile, preserving order.
func ExtractAll(profiles []profile.Profile) []Features {
	out := make([]Features, len(profiles))
	for i, p := range profiles {
		out[i] = Extract(p)
	}
	return out
}
