package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filestore/backend/internal/cache"
	"github.com/filestore/backend/internal/config"
	"github.com/filestore/backend/internal/database"
	"github.com/filestore/backend/internal/events"
	"github.com/filestore/backend/internal/handlers"
	"github.com/filestore/backend/internal/middleware"
	"github.com/filestore/backend/internal/services"
	"github.com/filestore/backend/internal/storage"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration failed: %v", err)
	}

	logger.InitWithLevel(logger.LogLevel(cfg.Log.Level))
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	ctx := context.Background()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	blobStore, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if ensurer, ok := blobStore.(storage.BucketEnsurer); ok {
		if err := ensurer.EnsureBucket(ctx); err != nil {
			log.Fatalf("failed ensuring storage bucket: %v", err)
		}
	}

	var accessCache *cache.AccessCache
	if cfg.Redis.Enabled() {
		accessCache, err = cache.NewAccessCache(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("redis initialization failed: %v", err)
		}
		defer accessCache.Close()
	}

	var publisher events.Publisher
	if cfg.Kafka.Enabled() {
		producer := events.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
	}

	accessService := services.NewAccessService(db, accessCache)
	fileService := services.NewFileService(db, blobStore, accessService)
	auditService := services.NewAuditService(db, publisher)
	defer auditService.Close()

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: utils.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:     db,
		Access: accessService,
		Files:  fileService,
		Audit:  auditService,
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":           cfg.Server.Port,
		"address":        listenAddr,
		"body_limit_mb":  cfg.Server.BodyLimitMB,
		"db_driver":      cfg.DB.Driver,
		"storage_driver": cfg.Storage.Driver,
		"access_cache":   cfg.Redis.Enabled(),
		"event_stream":   cfg.Kafka.Enabled(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("forced shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
