// Copyright (c) 2026 Inkora. All rights reserved.

// Command api is the entry point for the Inkora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the token service, principal resolver, and policy engine.
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/inkora/inkora/internal/api"
	"github.com/inkora/inkora/internal/library"
	"github.com/inkora/inkora/internal/moderation/report"
	"github.com/inkora/inkora/internal/novel"
	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/config"
	"github.com/inkora/inkora/internal/platform/constants"
	"github.com/inkora/inkora/internal/platform/migration"
	pgstore "github.com/inkora/inkora/internal/platform/postgres"
	redisstore "github.com/inkora/inkora/internal/platform/redis"
	"github.com/inkora/inkora/internal/platform/sec"
	"github.com/inkora/inkora/internal/ranking"
	"github.com/inkora/inkora/internal/social"
	"github.com/inkora/inkora/internal/users/account"
	"github.com/inkora/inkora/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "inkora"))
	slog.SetDefault(log)

	log.Info("[Inkora] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "inkora"))
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

	// Application-lifetime context. Background middleware goroutines stop
	// when this is cancelled at shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

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

	// ── 6. Identity & Authorization ───────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	accountRepository := account.NewPostgresRepository(pool)
	resolver := authz.NewResolver(accountRepository, log)

	novelRepository := novel.NewPostgresRepository(pool)

	// The policy engine is assembled once at startup. Guards registered here
	// are the only ones route policies may call.
	engine := authz.NewEngine(log)
	guards := novel.NewGuardSet(novelRepository)
	engine.RegisterGuard("novel.canEdit", guards.CanEdit)
	engine.RegisterGuard("novel.canHide", guards.CanHide)

	// ── 7. Health Handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	sessionRepository := auth.NewPostgresSessionRepository(pool)
	authService := auth.NewService(
		accountRepository,
		sessionRepository,
		auth.NewResetTokenStore(rdb),
		auth.NewVerificationTokenStore(rdb),
		jwtSvc,
		log,
	)
	authHandler := auth.NewHandler(authService, engine)

	// Periodic purge of expired refresh sessions.
	go func() {
		ticker := time.NewTicker(constants.SessionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := sessionRepository.DeleteExpired(appCtx); err != nil {
					log.Warn("session_sweep_failed", slog.Any("error", err))
				}
			case <-appCtx.Done():
				return
			}
		}
	}()

	accountService := account.NewService(accountRepository, sessionRepository, log)
	accountHandler := account.NewHandler(accountService, engine)

	chapterRepository := novel.NewPostgresChapterRepository(pool)
	novelService := novel.NewService(novelRepository, chapterRepository, log)
	novelHandler := novel.NewHandler(novelService, engine)

	libraryService := library.NewService(library.NewPostgresRepository(pool), log)
	libraryHandler := library.NewHandler(libraryService, engine)

	socialService := social.NewService(
		social.NewPostgresCommentRepository(pool),
		social.NewPostgresVoteRepository(pool),
		log,
	)
	socialHandler := social.NewHandler(socialService, engine)

	rankingService := ranking.NewService(novelRepository, rdb, log)
	rankingHandler := ranking.NewHandler(rankingService, engine)

	reportRepository := report.NewPostgresRepository(pool)
	reportService := report.NewService(
		reportRepository,
		novelRepository,
		social.NewPostgresCommentRepository(pool),
		log,
	)
	reportHandler := report.NewHandler(reportService, engine)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
		Novel:     novelHandler,
		Library:   libraryHandler,
		Social:    socialHandler,
		Ranking:   rankingHandler,
		Report:    reportHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, resolver, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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
