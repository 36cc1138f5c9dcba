package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/auth"
	"github.com/zfogg/blogicum/internal/cache"
	"github.com/zfogg/blogicum/internal/config"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/email"
	"github.com/zfogg/blogicum/internal/handlers"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/middleware"
	"github.com/zfogg/blogicum/internal/repository"
	"github.com/zfogg/blogicum/internal/storage"
	"github.com/zfogg/blogicum/internal/telemetry"
	"github.com/zfogg/blogicum/internal/visibility"
	"go.uber.org/zap"
)

// mediaURL is where locally stored images are served from
const mediaURL = "/media"

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if !envLoaded {
		logger.Log.Info(".env file not found, using system environment variables")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Log.Info("=== Blogicum server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  telemetry.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}

	if err := database.Initialize(cfg); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if tp != nil {
		if err := database.DB.Use(telemetry.GORMTracingPlugin(cfg.DatabaseDriver)); err != nil {
			logger.Log.Warn("Failed to install database tracing", zap.Error(err))
		}
	}

	// Redis is optional: rate limits fall back to in-memory buckets
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limits are per instance", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	images, err := newImageStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	mailer, err := newMailer(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	policy := visibility.NewPolicy(cfg.ShowUncategorized)
	users := repository.NewUserRepository(database.DB)

	h := handlers.NewHandlers(handlers.Deps{
		Posts:      repository.NewPostRepository(database.DB, policy),
		Comments:   repository.NewCommentRepository(database.DB),
		Users:      users,
		Categories: repository.NewCategoryRepository(database.DB),
		Locations:  repository.NewLocationRepository(database.DB),
		Accounts:   auth.NewService(users),
		Sessions:   auth.NewSessionManager(cfg.SecretKey(), cfg.IsProduction()),
		Images:     images,
		Mailer:     mailer,
		Policy:     policy,
		PageSize:   cfg.PostsPerPage,
		BaseURL:    cfg.BaseURL,
	})

	authLimit := middleware.AuthRateLimitConfig()
	authLimit.Limit = cfg.RateLimitAuth

	routerCfg := handlers.RouterConfig{
		SecureCookies:   cfg.IsProduction(),
		Gzip:            true,
		AuthRateLimit:   middleware.RedisRateLimitMiddleware(redisClient, authLimit),
		UploadRateLimit: middleware.RedisRateLimitMiddleware(redisClient, middleware.UploadRateLimitConfig()),
		HealthCheck:     database.Health,
	}
	if tp != nil {
		routerCfg.ServiceName = telemetry.ServiceName
	}
	if cfg.StorageBackend == "local" {
		routerCfg.MediaRoot = cfg.MediaRoot
		routerCfg.MediaURL = mediaURL
	}

	r, err := handlers.NewRouter(h, routerCfg)
	if err != nil {
		logger.Log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reportDatabaseConnections(ctx, cfg.DatabaseDriver)

	// Start server in a goroutine
	go func() {
		logger.Log.Info("Blogicum listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("Failed to flush traces", zap.Error(err))
		}
	}

	logger.Log.Info("Server exited")
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.StorageBackend != "s3" {
		return storage.NewLocalStore(cfg.MediaRoot, mediaURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.CheckBucketAccess(ctx); err != nil {
		logger.Log.Warn("S3 bucket access failed, image uploads will fail", zap.Error(err))
	}
	return store, nil
}

func newMailer(cfg *config.Config) (email.Sender, error) {
	switch cfg.EmailBackend {
	case "ses":
		return email.NewSESSender(cfg.AWSRegion, cfg.EmailFrom, "Blogicum")
	case "log":
		return email.NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unsupported email backend %q", cfg.EmailBackend)
	}
}

// reportDatabaseConnections publishes the pool size to prometheus until ctx ends
func reportDatabaseConnections(ctx context.Context, driver string) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		if sqlDB, err := database.DB.DB(); err == nil {
			middleware.SetDatabaseConnections(driver, sqlDB.Stats().OpenConnections)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
