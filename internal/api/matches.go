package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
	"github.com/MikeSquared-Agency/Matchmaker/internal/store"
)

const (
	defaultTopPairs        = matching.DashboardTopPairs
	maxTopPairs            = 50
	defaultNonObviousPairs = matching.DashboardNonObviousPairs
	maxNonObviousPairs     = 20
)

// MatchRow is a ranked match with the organizer's decision on it.
type MatchRow struct {
	matching.MatchScore
	Action store.Action `json:"action"`
}

// PairRow is a recommended pair with the organizer's decision on it.
type PairRow struct {
	matching.PairResult
	Action store.Action `json:"action"`
}

type MatchesHandler struct {
	source *ProfileSource
	store  store.Store
	engine *matching.Engine
}

func NewMatchesHandler(ps *ProfileSource, s store.Store, e *matching.Engine) *MatchesHandler {
	return &MatchesHandler{source: ps, store: s, engine: e}
}

// Matches returns ranked matches for every profile, or for one when
// profile_id is given.
// GET /api/v1/matches
func (h *MatchesHandler) Matches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profiles, _, err := h.source.Current(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	actions, err := actionIndex(ctx, h.store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if id := r.URL.Query().Get("profile_id"); id != "" {
		rows, err := h.engine.MatchesFor(ctx, profiles, id)
		if errors.Is(err, matching.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"profile_id": id,
			"matches":    withMatchActions(id, rows, actions),
		})
		return
	}

	all := h.engine.GenerateAllMatches(ctx, profiles)
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": withAllMatchActions(all, actions)})
}

// TopPairs returns the best unordered pairs by composite score.
// GET /api/v1/pairs/top
func (h *MatchesHandler) TopPairs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultTopPairs, maxTopPairs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.pairs(w, r, limit, h.engine.TopIntroPairs)
}

// NonObvious returns low-overlap, high-complementarity pairs.
// GET /api/v1/pairs/non-obvious
func (h *MatchesHandler) NonObvious(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultNonObviousPairs, maxNonObviousPairs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.pairs(w, r, limit, h.engine.TopNonObviousPairs)
}

type pairSelector func(ctx context.Context, profiles []profile.Profile, limit int) []matching.PairResult

func (h *MatchesHandler) pairs(w http.ResponseWriter, r *http.Request, limit int, selectPairs pairSelector) {
	ctx := r.Context()
	profiles, _, err := h.source.Current(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	actions, err := actionIndex(ctx, h.store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pairs := selectPairs(ctx, profiles, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"limit": limit,
		"pairs": withPairActions(pairs, actions),
	})
}

// Explain returns the factor breakdown for one directed pair.
// GET /api/v1/scoring/explain/{from_id}/{to_id}
func (h *MatchesHandler) Explain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profiles, _, err := h.source.Current(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	exp, err := h.engine.Explain(ctx, profiles, chi.URLParam(r, "from_id"), chi.URLParam(r, "to_id"))
	if errors.Is(err, matching.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func actionIndex(ctx context.Context, s store.Store) (map[string]store.Action, error) {
	actions, err := s.ListActions(ctx)
	if err != nil {
		return nil, err
	}
	return store.ActionIndex(actions), nil
}

func lookupAction(actions map[string]store.Action, fromID, toID string) store.Action {
	if a, ok := actions[store.ActionKey(fromID, toID)]; ok {
		return a
	}
	return store.DefaultAction(fromID, toID)
}

func withMatchActions(sourceID string, rows []matching.MatchScore, actions map[string]store.Action) []MatchRow {
	out := make([]MatchRow, len(rows))
	for i, row := range rows {
		out[i] = MatchRow{MatchScore: row, Action: lookupAction(actions, sourceID, row.TargetID)}
	}
	return out
}

func withAllMatchActions(all map[string][]matching.MatchScore, actions map[string]store.Action) map[string][]MatchRow {
	out := make(map[string][]MatchRow, len(all))
	for id, rows := range all {
		out[id] = withMatchActions(id, rows, actions)
	}
	return out
}

func withPairActions(pairs []matching.PairResult, actions map[string]store.Action) []PairRow {
	out := make([]PairRow, len(pairs))
	for i, p := range pairs {
		out[i] = PairRow{PairResult: p, Action: lookupAction(actions, p.FromID, p.ToID)}
	}
	return out
}
