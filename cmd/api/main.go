// Copyright (c) 2026 MindMeld. All rights reserved.

// Command api is the entry point for the MindMeld HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindmeld/server/internal/api"
	"github.com/mindmeld/server/internal/games"
	"github.com/mindmeld/server/internal/ml"
	"github.com/mindmeld/server/internal/platform/config"
	"github.com/mindmeld/server/internal/platform/constants"
	"github.com/mindmeld/server/internal/platform/migration"
	pgstore "github.com/mindmeld/server/internal/platform/postgres"
	redisstore "github.com/mindmeld/server/internal/platform/redis"
	"github.com/mindmeld/server/internal/platform/sec"
	"github.com/mindmeld/server/internal/training/analytics"
	"github.com/mindmeld/server/internal/training/leaderboard"
	"github.com/mindmeld/server/internal/training/recommendation"
	"github.com/mindmeld/server/internal/training/session"
	"github.com/mindmeld/server/internal/users/auth"
	"github.com/mindmeld/server/internal/users/profile"
)

// sweepInterval is how often expired rows are garbage collected.
const sweepInterval = 1 * time.Hour

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[MindMeld] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Inference Client ───────────────────────────────────────────────
	// Remote first, local heuristics when the deployment is unreachable.
	inference := ml.NewFallback(ml.NewHTTPClient(cfg.MLServiceURL, cfg.MLTimeout), log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	refreshTokenRepository := auth.NewRefreshTokenRepository(pool)
	authService := auth.NewService(
		auth.NewUserRepository(pool),
		refreshTokenRepository,
		auth.NewBlacklistRepository(rdb),
		auth.NewVerificationTokenRepository(rdb),
		jwtSvc,
	)

	profileService := profile.NewService(profile.NewRepository(pool))

	catalog := games.Default()

	sessionService := session.NewService(
		catalog,
		session.NewRepository(pool),
		session.NewProgressionRepository(pool),
		session.NewBadgeRepository(pool),
		inference,
		log,
	)

	analyticsService := analytics.NewService(catalog, analytics.NewRepository(pool), log)

	leaderboardService := leaderboard.NewService(
		leaderboard.NewRepository(pool),
		leaderboard.NewCacheRepository(rdb),
		log,
	)

	recommendationRepository := recommendation.NewRepository(pool)
	recommendationService := recommendation.NewService(
		recommendationRepository,
		recommendation.NewSignalRepository(pool),
		inference,
		log,
	)

	// Every recording triggers the notice rule set off the request path.
	sessionService.Subscribe(recommendationService)

	// ── 10. Expiry Sweeps ─────────────────────────────────────────────────
	go runSweeps(log, refreshTokenRepository, recommendationService)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:       liveness,
		Readiness:      readiness,
		Auth:           auth.NewHandler(authService),
		Profile:        profile.NewHandler(profileService),
		Games:          games.NewHandler(catalog),
		Session:        session.NewHandler(sessionService),
		Analytics:      analytics.NewHandler(analyticsService),
		Leaderboard:    leaderboard.NewHandler(leaderboardService),
		Recommendation: recommendation.NewHandler(recommendationService),
		ML:             ml.NewHandler(inference, recommendationService),
	}

	server := api.NewServer(context.Background(), cfg, log, jwtSvc, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

// runSweeps periodically removes expired refresh tokens and notices.
//
// Both tables carry expiry timestamps; a relational store needs an explicit
// sweep where a document store would use a TTL index.
func runSweeps(log *slog.Logger, tokens *auth.PostgresRefreshTokenRepository, notices *recommendation.Service) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)

		if err := tokens.DeleteExpired(sweepCtx); err != nil {
			log.Warn("refresh_token_sweep_failed", slog.Any("error", err))
		}
		if err := notices.Sweep(sweepCtx); err != nil {
			log.Warn("notice_sweep_failed", slog.Any("error", err))
		}

		cancel()
	}
}
