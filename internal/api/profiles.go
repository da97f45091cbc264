package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/hermes"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
	"github.com/MikeSquared-Agency/Matchmaker/internal/store"
)

const sourceRuntime = "runtime"

// errNoProfiles rejects an empty batch; reset is the way back to the seed.
var errNoProfiles = errors.New("profiles must not be empty; use reset to restore the seed profiles")

// ProfileSource resolves the active attendee list: ingested runtime profiles
// when any exist, otherwise the seed file.
type ProfileSource struct {
	seed     []profile.Profile
	seedName string
	store    store.Store
}

func NewProfileSource(seed []profile.Profile, seedName string, s store.Store) *ProfileSource {
	return &ProfileSource{seed: seed, seedName: seedName, store: s}
}

// Current returns the enriched active profiles and where they came from.
func (ps *ProfileSource) Current(ctx context.Context) ([]profile.Profile, string, error) {
	runtime, err := ps.store.ListProfiles(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(runtime) > 0 {
		return profile.EnrichAll(runtime), sourceRuntime, nil
	}
	return profile.EnrichAll(ps.seed), ps.seedName, nil
}

func (ps *ProfileSource) SeedCount() int { return len(ps.seed) }

type ProfilesHandler struct {
	source *ProfileSource
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger
}

func NewProfilesHandler(ps *ProfileSource, s store.Store, h hermes.Client, logger *slog.Logger) *ProfilesHandler {
	return &ProfilesHandler{source: ps, store: s, hermes: h, logger: logger}
}

// List returns the active profiles.
// GET /api/v1/profiles
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, source, err := h.source.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": profiles, "source": source})
}

type ingestRequest struct {
	Profiles  []profile.Profile `json:"profiles"`
	Overwrite *bool             `json:"overwrite"`
}

// Ingest stores runtime profiles. overwrite defaults to true; false merges
// by id.
// POST /api/v1/profiles/ingest
func (h *ProfilesHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	overwrite := req.Overwrite == nil || *req.Overwrite

	stored, err := ingest(r.Context(), h.store, req.Profiles, overwrite)
	if err != nil {
		if errors.Is(err, errNoProfiles) || errors.Is(err, profile.ErrMissingID) || errors.Is(err, profile.ErrMissingName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("profiles ingested", "received", len(req.Profiles), "stored", stored, "overwrite", overwrite)
	hermes.Emit(r.Context(), h.hermes, h.logger, hermes.SubjectProfilesIngested, hermes.ProfilesIngestedEvent{
		Received:  len(req.Profiles),
		Stored:    stored,
		Overwrite: overwrite,
		Source:    "api",
		Timestamp: time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"stored_profiles": stored,
		"source":          sourceRuntime,
		"overwrite":       overwrite,
	})
}

// Reset drops runtime profiles so the seed file is active again.
// POST /api/v1/profiles/reset
func (h *ProfilesHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetProfiles(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Info("runtime profiles reset", "seed_profiles", h.source.SeedCount())
	hermes.Emit(r.Context(), h.hermes, h.logger, hermes.SubjectProfilesReset, hermes.ProfilesResetEvent{
		SeedProfiles: h.source.SeedCount(),
		Timestamp:    time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "source": h.source.seedName})
}

// HandleSubmission ingests a batch published by registration on
// hermes.SubjectProfilesSubmitted.
func (h *ProfilesHandler) HandleSubmission(ctx context.Context, subject string, data []byte) error {
	var evt hermes.ProfilesSubmittedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", subject, err)
	}
	stored, err := ingest(ctx, h.store, evt.Profiles, evt.Overwrite)
	if err != nil {
		return err
	}
	h.logger.Info("profiles ingested", "received", len(evt.Profiles), "stored", stored, "overwrite", evt.Overwrite, "subject", subject)
	hermes.Emit(ctx, h.hermes, h.logger, hermes.SubjectProfilesIngested, hermes.ProfilesIngestedEvent{
		Received:  len(evt.Profiles),
		Stored:    stored,
		Overwrite: evt.Overwrite,
		Source:    "hermes",
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func ingest(ctx context.Context, s store.Store, profiles []profile.Profile, overwrite bool) (int, error) {
	if len(profiles) == 0 {
		return 0, errNoProfiles
	}
	if err := profile.ValidateAll(profiles); err != nil {
		return 0, err
	}
	return s.SaveProfiles(ctx, profiles, overwrite)
}
