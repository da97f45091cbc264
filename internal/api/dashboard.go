package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/hermes"
	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
	"github.com/MikeSquared-Agency/Matchmaker/internal/store"
)

type DashboardOverview struct {
	AttendeeCount         int                       `json:"attendee_count"`
	RecommendedIntroCount int                       `json:"recommended_intro_count"`
	ActionedIntroCount    int                       `json:"actioned_intro_count"`
	RiskDistribution      matching.RiskDistribution `json:"risk_distribution"`
}

type DashboardResponse struct {
	Overview           DashboardOverview     `json:"overview"`
	TopIntroPairs      []PairRow             `json:"top_intro_pairs"`
	TopNonObviousPairs []PairRow             `json:"top_non_obvious_pairs"`
	PerProfile         map[string][]MatchRow `json:"per_profile"`
}

type DashboardHandler struct {
	source *ProfileSource
	store  store.Store
	engine *matching.Engine
	hermes hermes.Client
	logger *slog.Logger
}

func NewDashboardHandler(ps *ProfileSource, s store.Store, e *matching.Engine, h hermes.Client, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{source: ps, store: s, engine: e, hermes: h, logger: logger}
}

// Get computes the organizer dashboard.
// GET /api/v1/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profiles, _, err := h.source.Current(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	actions, err := h.store.ListActions(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	idx := store.ActionIndex(actions)

	snap := h.engine.Snapshot(ctx, profiles)
	resp := DashboardResponse{
		Overview: DashboardOverview{
			AttendeeCount:         snap.AttendeeCount,
			RecommendedIntroCount: len(snap.TopPairs),
			ActionedIntroCount:    len(actions),
			RiskDistribution:      snap.RiskDistribution,
		},
		TopIntroPairs:      withPairActions(snap.TopPairs, idx),
		TopNonObviousPairs: withPairActions(snap.NonObviousPairs, idx),
		PerProfile:         withAllMatchActions(snap.PerProfile, idx),
	}

	hermes.Emit(ctx, h.hermes, h.logger, hermes.SubjectDashboardComputed, hermes.DashboardComputedEvent{
		AttendeeCount:       resp.Overview.AttendeeCount,
		RecommendedIntros:   resp.Overview.RecommendedIntroCount,
		ActionedIntros:      resp.Overview.ActionedIntroCount,
		NonObviousPairs:     len(snap.NonObviousPairs),
		HighRiskRecommended: countHighRisk(snap.TopPairs),
		Timestamp:           time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, resp)
}

func countHighRisk(pairs []matching.PairResult) int {
	n := 0
	for _, p := range pairs {
		if p.RiskLevel == scoring.RiskHigh {
			n++
		}
	}
	return n
}
