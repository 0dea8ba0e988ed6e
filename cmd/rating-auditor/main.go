package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/events"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/database"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/worker"
)

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
	appLogger.Info("Starting rating auditor...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(context.Background(), cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to database")

	auditor := worker.NewAuditor(db, appLogger)
	ratingAuditor := worker.NewRatingAuditor(auditor, cfg.Auditor.DebounceWindow, appLogger)

	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Consume(ctx, events.AuditorConsumer, ratingAuditor.HandleEvent)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Received shutdown signal")
		<-done
	case err := <-done:
		if err != nil {
			appLogger.Error("Consumer stopped", err)
		}
	}

	// Pending audits still get a chance to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ratingAuditor.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Rating auditor stopped")
}
