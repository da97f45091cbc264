package hermes

const (
	SubjectProfilesIngested  = "matchmaker.profiles.ingested"
	SubjectProfilesReset     = "matchmaker.profiles.reset"
	SubjectProfilesSubmitted = "matchmaker.profiles.submitted"
	SubjectDashboardComputed = "matchmaker.dashboard.computed"

	StreamName   = "MATCHMAKER_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

// SubjectIntroActioned is published when an organizer decides on an intro.
func SubjectIntroActioned(fromID, toID string) string {
	return "matchmaker.intro." + token(fromID) + "." + token(toID) + ".actioned"
}

// token makes an id safe to use as a single NATS subject token.
func token(id string) string {
	out := []byte(id)
	for i, c := range out {
		switch c {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
