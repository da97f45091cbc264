package matching

import (
	"context"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
)

const (
	DashboardTopPairs        = 10
	DashboardNonObviousPairs = 5

	SummaryTopPairs        = 3
	SummaryNonObviousPairs = 2
)

// Snapshot is everything the organizer dashboard shows, computed from one
// feature extraction.
type Snapshot struct {
	AttendeeCount    int                     `json:"attendee_count"`
	RiskDistribution RiskDistribution        `json:"risk_distribution"`
	PerProfile       map[string][]MatchScore `json:"per_profile"`
	TopPairs         []PairResult            `json:"top_intro_pairs"`
	NonObviousPairs  []PairResult            `json:"top_non_obvious_pairs"`
}

// Snapshot computes per-profile rankings, top pairs and non-obvious pairs.
// The two pair lists are selected independently and may overlap.
func (e *Engine) Snapshot(ctx context.Context, profiles []profile.Profile) Snapshot {
	start := time.Now()
	features := scoring.ExtractAll(profiles)

	snap := Snapshot{
		AttendeeCount: len(profiles),
		PerProfile:    make(map[string][]MatchScore, len(features)),
	}
	for _, src := range features {
		snap.PerProfile[src.Profile.ID] = e.rank(ctx, src, othersOf(src.Profile.ID, features))
	}
	snap.RiskDistribution = Distribution(snap.PerProfile)
	snap.TopPairs = e.topPairs(ctx, features, DashboardTopPairs)
	snap.NonObviousPairs = e.nonObviousPairs(ctx, features, DashboardNonObviousPairs)

	e.logger.Info("dashboard snapshot computed",
		"attendees", snap.AttendeeCount,
		"top_pairs", len(snap.TopPairs),
		"non_obvious_pairs", len(snap.NonObviousPairs),
		"duration", time.Since(start))
	return snap
}

// Distribution counts rows across all per-profile lists by risk tier.
func Distribution(perProfile map[string][]MatchScore) RiskDistribution {
	var d RiskDistribution
	for _, rows := range perProfile {
		for _, row := range rows {
			d.add(row.RiskLevel)
		}
	}
	return d
}

// Summary is a lighter Snapshot for conversational context: the risk
// distribution is counted from scores alone, PerProfile is left empty and
// rationales are rendered only for the few pairs returned.
func (e *Engine) Summary(ctx context.Context, profiles []profile.Profile) Snapshot {
	features := scoring.ExtractAll(profiles)

	var dist RiskDistribution
	for _, p := range e.scorePairs(ctx, features) {
		if p.a.Profile.ID == p.b.Profile.ID {
			continue
		}
		// Pair scores are symmetric, so each unordered pair stands for
		// both directed per-profile rows.
		dist.add(p.result.RiskLevel)
		dist.add(p.result.RiskLevel)
	}

	return Snapshot{
		AttendeeCount:    len(profiles),
		RiskDistribution: dist,
		TopPairs:         e.topPairs(ctx, features, SummaryTopPairs),
		NonObviousPairs:  e.nonObviousPairs(ctx, features, SummaryNonObviousPairs),
	}
}
