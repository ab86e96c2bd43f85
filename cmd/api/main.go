package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/upskillai/roadmap-api/internal/api"
	"github.com/upskillai/roadmap-api/internal/core/service"
	"github.com/upskillai/roadmap-api/internal/gateway"
	"github.com/upskillai/roadmap-api/internal/infrastructure/config"
	mongodb "github.com/upskillai/roadmap-api/internal/infrastructure/db/mongo"
	redisdb "github.com/upskillai/roadmap-api/internal/infrastructure/db/redis"
	"github.com/upskillai/roadmap-api/internal/infrastructure/queue"
	"github.com/upskillai/roadmap-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; stderr is all we have.
		println(err.Error())
		os.Exit(1)
	}

	log := logger.Init(cfg.LogLevel, cfg.Env == "development")

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index bootstrap failed")
	}

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	accountRepo := mongodb.NewAccountRepository(db)
	roadmapRepo := mongodb.NewRoadmapRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	// --- Audit pipeline ---
	auditSvc := service.NewAuditTrailService(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditSvc, log)
	dispatcher.Start(ctx)

	// --- Services ---
	authSvc := service.NewAuthService(accountRepo, cfg.JWTSecret, cfg.TokenTTL, dispatcher, log)
	adminSvc := service.NewAccountService(accountRepo, dispatcher, log)
	roadmapSvc := service.NewRoadmapService(roadmapRepo, log)

	aiClient := gateway.NewClient(gateway.Config{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, log)
	genLock := redisdb.NewGenerationLock(rdb)
	generationSvc := service.NewGenerationService(accountRepo, aiClient, genLock, dispatcher, log)

	// Bootstrap admin account, explicit and idempotent.
	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	e := api.NewRouter(api.Deps{
		Auth:           authSvc,
		Admin:          adminSvc,
		Roadmaps:       roadmapSvc,
		Generation:     generationSvc,
		Mongo:          db,
		Redis:          rdb,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
