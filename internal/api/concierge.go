package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Matchmaker/internal/concierge"
	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

type ConciergeHandler struct {
	source    *ProfileSource
	engine    *matching.Engine
	concierge *concierge.Concierge
}

func NewConciergeHandler(ps *ProfileSource, e *matching.Engine, c *concierge.Concierge) *ConciergeHandler {
	return &ConciergeHandler{source: ps, engine: e, concierge: c}
}

type chatRequest struct {
	Message   string           `json:"message"`
	ProfileID string           `json:"profile_id"`
	History   []concierge.Turn `json:"history"`
}

// Chat answers an organizer question against the current dashboard. An
// unknown profile_id is ignored rather than rejected.
// POST /api/v1/concierge/chat
func (h *ConciergeHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	profiles, _, err := h.source.Current(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	creq := concierge.Request{Message: req.Message, History: req.History}
	if req.ProfileID != "" {
		if p, ok := profile.Find(profiles, req.ProfileID); ok {
			creq.Profile = &p
		}
	}
	if len(profiles) > 0 {
		snap := h.engine.Summary(ctx, profiles)
		creq.Snapshot = &snap
	}

	writeJSON(w, http.StatusOK, h.concierge.Reply(ctx, creq))
}
