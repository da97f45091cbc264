package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Matchmaker/internal/concierge"
	"github.com/MikeSquared-Agency/Matchmaker/internal/hermes"
	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/rationale"
	"github.com/MikeSquared-Agency/Matchmaker/internal/store"
)

// Deps are the collaborators the API serves. Hermes may be nil.
type Deps struct {
	Profiles           *ProfileSource
	Store              store.Store
	Engine             *matching.Engine
	Concierge          *concierge.Concierge
	Hermes             hermes.Client
	AdminToken         string
	RateLimitPerMinute int
	Logger             *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	if d.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(d.RateLimitPerMinute, time.Minute))
	}

	profiles := NewProfilesHandler(d.Profiles, d.Store, d.Hermes, d.Logger)
	matches := NewMatchesHandler(d.Profiles, d.Store, d.Engine)
	dashboard := NewDashboardHandler(d.Profiles, d.Store, d.Engine, d.Hermes, d.Logger)
	actions := NewActionsHandler(d.Store, d.Hermes, d.Logger)
	chat := NewConciergeHandler(d.Profiles, d.Engine, d.Concierge)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/profiles", profiles.List)

		r.Get("/matches", matches.Matches)
		r.Get("/pairs/top", matches.TopPairs)
		r.Get("/pairs/non-obvious", matches.NonObvious)
		r.Get("/scoring/explain/{from_id}/{to_id}", matches.Explain)

		r.Get("/dashboard", dashboard.Get)

		r.Get("/actions", actions.List)
		r.Post("/actions", actions.Upsert)

		r.Post("/concierge/chat", chat.Chat)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminToken))
			r.Post("/profiles/ingest", profiles.Ingest)
			r.Post("/profiles/reset", profiles.Reset)
		})
	})

	return r
}

// BreakerReporter is implemented by rationale providers guarded by a
// circuit breaker.
type BreakerReporter interface {
	BreakerState() string
}

// NewMetricsRouter serves /health and /metrics. When explainer reports a
// breaker, /health includes its state.
func NewMetricsRouter(explainer rationale.Provider) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		if br, ok := explainer.(BreakerReporter); ok {
			body["rationale_mode"] = string(rationale.ModeLLM)
			body["rationale_breaker"] = br.BreakerState()
		}
		writeJSON(w, http.StatusOK, body)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
