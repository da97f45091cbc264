package scoring

import (
	"strings"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

// Role is the archetype an attendee plays in a deal.
type Role string

const (
	RoleInvestor  Role = "investor"
	RoleRegulator Role = "regulator"
	RoleBuilder   Role = "builder"
	RoleOperator  Role = "operator"
)

// ClassifyRole maps organization and title to a Role. Rules are checked in
// priority order and the first match wins.
func ClassifyRole(p profile.Profile) Role {
	org := strings.ToLower(p.Organization)
	title := strings.ToLower(p.Title)

	switch {
	case strings.Contains(org, "fund") || strings.Contains(org, "ventures") || strings.Contains(title, "partner"):
		return RoleInvestor
	case strings.Contains(org, "bank") || strings.Contains(org, "bundesbank") || strings.Contains(title, "regulator"):
		return RoleRegulator
	case strings.Contains(title, "cto") || strings.Contains(title, "ceo") || strings.Contains(title, "co-founder"):
		return RoleBuilder
	default:
		return RoleOperator
	}
}

// Complementarity scores an unordered pair of roles.
func Complementarity(a, b Role) float64 {
	if a > b {
		a, b = b, a
	}
	switch {
	case a == RoleBuilder && b == RoleInvestor:
		return 1.0
	case a == RoleBuilder && b == RoleRegulator:
		return 0.9
	case a == RoleInvestor && b == RoleRegulator:
		return 0.75
	case a == RoleBuilder && b == RoleBuilder:
		return 0.6
	case a == RoleInvestor && b == RoleInvestor:
		return 0.5
	default:
		return 0.45
	}
}
