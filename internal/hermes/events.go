package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

type ProfilesIngestedEvent struct {
	Received  int       `json:"received"`
	Stored    int       `json:"stored"`
	Overwrite bool      `json:"overwrite"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type ProfilesResetEvent struct {
	SeedProfiles int       `json:"seed_profiles"`
	Timestamp    time.Time `json:"timestamp"`
}

// ProfilesSubmittedEvent is consumed from registration: a batch of attendee
// profiles to merge into the runtime set.
type ProfilesSubmittedEvent struct {
	Profiles  []profile.Profile `json:"profiles"`
	Overwrite bool              `json:"overwrite"`
}

type IntroActionedEvent struct {
	ActionID  string    `json:"action_id"`
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type DashboardComputedEvent struct {
	AttendeeCount       int       `json:"attendee_count"`
	RecommendedIntros   int       `json:"recommended_intro_count"`
	ActionedIntros      int       `json:"actioned_intro_count"`
	NonObviousPairs     int       `json:"non_obvious_pair_count"`
	HighRiskRecommended int       `json:"high_risk_count"`
	Timestamp           time.Time `json:"timestamp"`
}
