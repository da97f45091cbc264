package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/hermes"
	"github.com/MikeSquared-Agency/Matchmaker/internal/store"
)

type ActionsHandler struct {
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger
}

func NewActionsHandler(s store.Store, h hermes.Client, logger *slog.Logger) *ActionsHandler {
	return &ActionsHandler{store: s, hermes: h, logger: logger}
}

// List returns every recorded organizer decision.
// GET /api/v1/actions
func (h *ActionsHandler) List(w http.ResponseWriter, r *http.Request) {
	actions, err := h.store.ListActions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if actions == nil {
		actions = []store.Action{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

type upsertActionRequest struct {
	FromID string             `json:"from_id"`
	ToID   string             `json:"to_id"`
	Status store.ActionStatus `json:"status"`
	Notes  string             `json:"notes"`
}

// Upsert records a decision on an intro. Status defaults to pending.
// POST /api/v1/actions
func (h *ActionsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = store.ActionPending
	}

	action := &store.Action{FromID: req.FromID, ToID: req.ToID, Status: req.Status, Notes: req.Notes}
	if err := action.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.UpsertAction(r.Context(), action); err != nil {
		if errors.Is(err, store.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updatedAt := time.Now().UTC()
	if action.UpdatedAt != nil {
		updatedAt = *action.UpdatedAt
	}
	h.logger.Info("intro actioned", "from_id", action.FromID, "to_id", action.ToID, "status", action.Status)
	hermes.Emit(r.Context(), h.hermes, h.logger, hermes.SubjectIntroActioned(action.FromID, action.ToID), hermes.IntroActionedEvent{
		ActionID:  action.ID.String(),
		FromID:    action.FromID,
		ToID:      action.ToID,
		Status:    string(action.Status),
		Notes:     action.Notes,
		Timestamp: updatedAt,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "updated_at": updatedAt})
}
