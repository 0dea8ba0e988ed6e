package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/events"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
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
	appLogger.Info("Starting moderation notifier...")

	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Consume(ctx, events.ModerationFeedConsumer, events.ModerationFeedHandler(appLogger)); err != nil {
		appLogger.Fatalf(err, "Moderation feed consumer %s failed", events.ModerationFeedConsumer.Name)
	}

	appLogger.Info("Moderation notifier stopped")
}
