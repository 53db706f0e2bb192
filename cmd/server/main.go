// Package main runs the video gateway HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vidforge/gateway/config"
	"github.com/vidforge/gateway/internal/auth"
	"github.com/vidforge/gateway/internal/middleware"
	"github.com/vidforge/gateway/internal/videos"
	"github.com/vidforge/gateway/pkg/broker"
	"github.com/vidforge/gateway/pkg/cache"
	"github.com/vidforge/gateway/pkg/database"
	"github.com/vidforge/gateway/pkg/response"
	"github.com/vidforge/gateway/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// An unreachable cache degrades video-list reads to repository hits, so
	// construction never fails.
	videoCache := cache.NewVideoCache(ctx, cfg.Redis, logger)
	defer videoCache.Close()

	// Storage backend is selected once here; the services never branch on it.
	var blobs storage.BlobStorage
	var presigner *storage.S3
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		s3Store, err := storage.NewS3(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Fatal("s3 storage", zap.Error(err))
		}
		blobs = s3Store
		presigner = s3Store
	default:
		localStore, err := storage.NewLocal(cfg.Storage.LocalBasePath, logger)
		if err != nil {
			logger.Fatal("local storage", zap.Error(err))
		}
		blobs = localStore
	}

	publisher := broker.NewPublisher(cfg.Broker, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	videoRepo := videos.NewRepository(pool)
	uploadSvc := videos.NewUploadService(videoRepo, blobs, publisher, logger)
	statusSvc := videos.NewStatusService(videoRepo, videoCache, logger)
	videoHandler := videos.NewHandler(uploadSvc, statusSvc, logger)
	if presigner != nil {
		videoHandler.SetPresigner(presigner, presigner.Bucket())
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			response.Internal(c, "database unavailable")
			return
		}
		cacheStatus := "connected"
		if err := videoCache.Ping(c.Request.Context()); err != nil {
			cacheStatus = "degraded"
		}
		response.OK(c, gin.H{"status": "ok", "cache": cacheStatus})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/upload", videoHandler.Upload)
		api.GET("/status", videoHandler.Status)
		api.GET("/users", authHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("storage_backend", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
