// @title           Identity Service API
// @version         1.0
// @description     Account registration, login and profile management.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/identity-hub/identity-service/docs"
	"github.com/identity-hub/identity-service/internal/api"
	"github.com/identity-hub/identity-service/internal/api/handler"
	"github.com/identity-hub/identity-service/internal/core/service"
	mongodb "github.com/identity-hub/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/identity-hub/identity-service/internal/infrastructure/db/redis"
	"github.com/identity-hub/identity-service/internal/infrastructure/queue"
	"github.com/identity-hub/identity-service/internal/infrastructure/security"
	"github.com/identity-hub/identity-service/internal/infrastructure/storage"
	"github.com/identity-hub/identity-service/internal/pkg/config"
	"github.com/identity-hub/identity-service/internal/pkg/validate"
	"github.com/identity-hub/identity-service/pkg/logger"
)

const (
	serviceName     = "identity-service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	if err := service.NewRoleSeeder(roles, logger.Component("role_seeder")).Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles")
	}

	// --- Security ---
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	validator := validate.New()
	tokens := service.NewTokenIssuer(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	revocations := redisdb.NewRevocationStore(rdb)
	resets := redisdb.NewResetTokenStore(rdb, cfg.Security.ResetTokenTTL)
	policy := service.NewPasswordPolicy(cfg.Security.PasswordMinLength)

	uploader := storage.NewLocalUploader(storage.LocalConfig{
		Root:     cfg.Upload.Dir,
		BaseURL:  cfg.PublicBaseURL,
		MaxBytes: cfg.Upload.MaxBytes,
	})

	// --- Audit pipeline ---
	auditService := service.NewAuditService(auditRepo, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, logger.Component("audit_dispatcher"))
	// Workers outlive the signal context; Stop flushes them after the HTTP server is down.
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Services ---
	registration := service.NewRegistrationService(users, hasher, validator, uploader, dispatcher, policy, logger.Component("registration"))
	authService := service.NewAuthService(users, hasher, validator, tokens, revocations, dispatcher, logger.Component("auth"))
	profiles := service.NewProfileService(users, hasher, validator, resets, uploader, dispatcher, policy,
		cfg.Security.UsernameMaxAttempts, logger.Component("profile"))
	queries := service.NewUserQueryService(users)

	e := api.NewRouter(api.RouterDeps{
		Registration: registration,
		Auth:         authService,
		Profiles:     profiles,
		Queries:      queries,
		Verifier:     tokens,
		Revocations:  revocations,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		UploadDir:      uploader.Root(),
		MaxUploadBytes: cfg.Upload.MaxBytes,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		CORSOrigins:    cfg.HTTP.CORSAllowedOrigins,
		Log:            logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("identity service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Stop()
	log.Info().Msg("audit events flushed")
}
