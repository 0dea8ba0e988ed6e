package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/storefront_reviews/internal/delivery/http"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/cache"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/database"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/profanity"
	cacheRepo "github.com/Pesokrava/storefront_reviews/internal/repository/cache"
	"github.com/Pesokrava/storefront_reviews/internal/repository/orders"
	"github.com/Pesokrava/storefront_reviews/internal/repository/postgres"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/moderation"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/product"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/review"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/reviewstore"

	_ "github.com/Pesokrava/storefront_reviews/docs"
)

// @title Storefront Reviews API
// @version 1.0
// @description Verified-purchase product reviews with profanity masking, rating aggregates and moderation.

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/storefront_reviews

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Products
// @tag.description Product catalogue endpoints

// @tag.name Reviews
// @tag.description Review submission and listing

// @tag.name Moderation
// @tag.description Admin review moderation

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		appLogger.Warnf("Ignoring invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Storefront Reviews API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(context.Background(), cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if err := database.RunMigrations(db, cfg.MigrationsDir, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(context.Background(), cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	if err := publisher.EnsureStream(); err != nil {
		appLogger.Warnf("Failed to ensure review events stream: %v", err)
	}

	productRepo := postgres.NewProductRepository(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ReviewsListTTL)

	ledgerCfg := orders.DefaultConfig(cfg.Orders.URL)
	ledgerCfg.Timeout = cfg.Orders.Timeout
	ledgerCfg.BreakerTimeout = cfg.Orders.BreakerTimeout
	ledger := orders.NewLedger(ledgerCfg, appLogger)

	screen := profanity.New(cfg.ProfanityExtraTerms...)
	appLogger.Infof("Profanity screen loaded with %d terms", screen.Size())

	store := reviewstore.New(productRepo, screen, appLogger)

	productService := product.NewService(productRepo, redisCache, appLogger)
	reviewService := review.NewService(store, ledger, redisCache, publisher, appLogger)
	moderationService := moderation.NewService(store, redisCache, publisher, appLogger)

	productHandler := handler.NewProductHandler(productService, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)
	moderationHandler := handler.NewModerationHandler(moderationService, appLogger)

	router := httpDelivery.NewRouter(productHandler, reviewHandler, moderationHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
