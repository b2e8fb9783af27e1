package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/verifintek/verifintek/internal/access"
	"github.com/verifintek/verifintek/internal/analytics"
	analytichttp "github.com/verifintek/verifintek/internal/analytics/http"
	"github.com/verifintek/verifintek/internal/app"
	"github.com/verifintek/verifintek/internal/auth"
	"github.com/verifintek/verifintek/internal/concepts"
	"github.com/verifintek/verifintek/internal/masterdata/companies"
	"github.com/verifintek/verifintek/internal/masterdata/subunits"
	"github.com/verifintek/verifintek/internal/movements"
	"github.com/verifintek/verifintek/internal/observability"
	"github.com/verifintek/verifintek/internal/platform/cache"
	"github.com/verifintek/verifintek/internal/platform/db"
	"github.com/verifintek/verifintek/internal/shared"
	"github.com/verifintek/verifintek/internal/users"
	"github.com/verifintek/verifintek/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "verifintek_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	usersRepo := users.NewRepository(dbpool)
	accessRepo := access.NewRepository(dbpool)
	directory := access.NewPGDirectory(dbpool)
	resolver := access.NewResolver(accessRepo, directory, usersRepo)
	accessHandler := access.NewHandler(logger, resolver)

	conceptsRepo := concepts.NewRepository(dbpool)
	conceptsService := concepts.NewService(conceptsRepo)
	conceptsHandler := concepts.NewHandler(logger, conceptsService)

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsCache := analytics.NewCache(redisClient, cfg.ReportCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, resolver, analyticsCache)
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	movementsRepo := movements.NewRepository(dbpool)
	movementsService := movements.NewService(movementsRepo, conceptsService, resolver)
	movementsHandler := movements.NewHandler(logger, movementsService, analyticsService, jobClient)

	companiesRepo := companies.NewRepository(dbpool)
	companiesService := companies.NewService(companiesRepo)
	companiesHandler := companies.NewHandler(logger, companiesService)

	subUnitsRepo := subunits.NewRepository(dbpool)
	subUnitsService := subunits.NewService(subUnitsRepo)
	subUnitsHandler := subunits.NewHandler(logger, subUnitsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		AccessHandler:    accessHandler,
		MovementsHandler: movementsHandler,
		ConceptsHandler:  conceptsHandler,
		CompaniesHandler: companiesHandler,
		SubUnitsHandler:  subUnitsHandler,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
