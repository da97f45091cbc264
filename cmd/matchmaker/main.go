package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/api"
	"github.com/MikeSquared-Agency/Matchmaker/internal/concierge"
	"github.com/MikeSquared-Agency/Matchmaker/internal/config"
	"github.com/MikeSquared-Agency/Matchmaker/internal/hermes"
	"github.com/MikeSquared-Agency/Matchmaker/internal/matching"
	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
	"github.com/MikeSquared-Agency/Matchmaker/internal/rationale"
	"github.com/MikeSquared-Agency/Matchmaker/internal/scoring"
	"github.com/MikeSquared-Agency/Matchmaker/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		db = pg
		logger.Info("connected to database")
	} else {
		db = store.NewMemoryStore()
		logger.Info("no database configured, keeping state in memory")
	}
	defer db.Close()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Seed profiles
	seed, err := profile.LoadFile(cfg.Data.ProfilesPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("seed profiles not found, starting empty", "path", cfg.Data.ProfilesPath)
	} else if err != nil {
		logger.Error("failed to load seed profiles", "path", cfg.Data.ProfilesPath, "error", err)
		os.Exit(1)
	} else {
		logger.Info("seed profiles loaded", "path", cfg.Data.ProfilesPath, "count", len(seed))
	}
	profiles := api.NewProfileSource(seed, cfg.Data.ProfilesPath, db)

	// Matching
	scorer := scoring.NewScorer(cfg.Scoring.Weights, logger)
	explainer := rationale.NewProvider(ctx, cfg.RationaleSettings(), logger)
	engine := matching.NewEngine(scorer, explainer, logger)
	chat := concierge.New(ctx, cfg.ConciergeSettings(), logger)

	// Registration pushes profile batches over hermes.
	if hermesClient != nil {
		ingest := api.NewProfilesHandler(profiles, db, hermesClient, logger)
		if err := hermesClient.Subscribe(hermes.SubjectProfilesSubmitted, ingest.HandleSubmission); err != nil {
			logger.Warn("failed to subscribe to profile submissions", "error", err)
		}
	}

	// API server
	router := api.NewRouter(api.Deps{
		Profiles:           profiles,
		Store:              db,
		Engine:             engine,
		Concierge:          chat,
		Hermes:             hermesClient,
		AdminToken:         cfg.Server.AdminToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		Logger:             logger,
	})
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(explainer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
