package main

import (
	"context"
	"os/signal"
	"syscall"

	"inventory-ledger-service/internal/config"
	"inventory-ledger-service/internal/engine"
	"inventory-ledger-service/internal/events"
	"inventory-ledger-service/internal/kafka"
	"inventory-ledger-service/internal/repository"
	"inventory-ledger-service/internal/reservation"
	"inventory-ledger-service/pkg/logger"

	"go.uber.org/zap"
)

// The listener consumes order lifecycle events and applies the matching
// reservation transitions against the same SQLite database the API serves.
func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("Starting order event listener",
		zap.String("environment", cfg.Environment),
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopicOrders),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewSQLiteRepository(cfg.SQLitePath, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open SQLite repository", zap.Error(err))
	}
	defer repo.Close()

	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Warn("Failed to initialize Kafka publisher, using in-memory fallback", zap.Error(err))
		publisher = events.NewEventPublisher()
	} else {
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	accountingEngine := engine.New(repo, publisher, appLogger,
		engine.WithMaxRetries(cfg.EngineMaxRetries),
	)
	reservationService := reservation.NewService(accountingEngine, repo, appLogger)

	consumer, err := kafka.NewConsumer(cfg, reservationService, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		appLogger.Fatal("Consumer stopped unexpectedly", zap.Error(err))
	}

	appLogger.Info("Listener shut down")
}
