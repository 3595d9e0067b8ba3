package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-ledger-service/internal/auth"
	"inventory-ledger-service/internal/cache"
	"inventory-ledger-service/internal/config"
	"inventory-ledger-service/internal/engine"
	"inventory-ledger-service/internal/events"
	"inventory-ledger-service/internal/handlers"
	"inventory-ledger-service/internal/observability"
	"inventory-ledger-service/internal/query"
	"inventory-ledger-service/internal/repository"
	"inventory-ledger-service/internal/reservation"
	"inventory-ledger-service/pkg/logger"
	"inventory-ledger-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "inventory-ledger-service/docs" // Import docs for Swagger
)

// @title           Inventory Ledger Service API
// @version         1.0
// @description     Per-variant stock ledger: accounting engine, reservation lifecycle, and transaction history queries.

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("Starting inventory ledger service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OtelEnabled {
		shutdownTracing, err := observability.SetupTracing(ctx, cfg)
		if err != nil {
			appLogger.Warn("Failed to set up tracing, continuing without it", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(shutdownCtx); err != nil {
					appLogger.Warn("Tracing shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	// Persistence: SQLite when a path is configured, in-memory otherwise.
	var (
		stockRepo  repository.StockRepository
		ledgerRepo repository.LedgerRepository
	)
	if cfg.SQLitePath != "" {
		sqliteRepo, err := repository.NewSQLiteRepository(cfg.SQLitePath, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to open SQLite repository", zap.Error(err))
		}
		defer sqliteRepo.Close()
		stockRepo, ledgerRepo = sqliteRepo, sqliteRepo
		appLogger.Info("SQLite repository initialized", zap.String("path", cfg.SQLitePath))
	} else {
		memRepo := repository.NewInMemoryRepository()
		stockRepo, ledgerRepo = memRepo, memRepo
		appLogger.Warn("No SQLITE_PATH configured, using in-memory repository")
	}

	// Event publisher: Kafka with in-memory fallback.
	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Warn("Failed to initialize Kafka publisher, using in-memory fallback", zap.Error(err))
		publisher = events.NewEventPublisher()
	} else {
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	readCache := cache.New(cfg, appLogger)
	queryService := query.NewService(stockRepo, ledgerRepo, readCache, cfg.CacheTTL, appLogger)

	accountingEngine := engine.New(stockRepo, publisher, appLogger,
		engine.WithInvalidator(queryService),
		engine.WithMaxRetries(cfg.EngineMaxRetries),
	)
	reservationService := reservation.NewService(accountingEngine, stockRepo, appLogger)

	// Idempotency store: BoltDB when a path is configured, in-memory otherwise.
	var requestIDStore middleware.RequestIDStore
	if cfg.IdempotencyPath != "" {
		boltStore, err := middleware.NewBoltRequestIDStore(cfg.IdempotencyPath)
		if err != nil {
			appLogger.Fatal("Failed to open idempotency store", zap.Error(err))
		}
		defer boltStore.Close()
		requestIDStore = boltStore
		appLogger.Info("BoltDB idempotency store initialized", zap.String("path", cfg.IdempotencyPath))
	} else {
		requestIDStore = middleware.NewInMemoryRequestIDStore()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, appLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))
	router.Use(middleware.IdempotencyMiddleware(requestIDStore, appLogger, cfg.IdempotencyTTL))
	router.Use(middleware.ErrorHandler(appLogger))
	router.Use(middleware.ActorMiddleware(jwtManager, appLogger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	stockHandler := handlers.NewStockHandler(appLogger, accountingEngine, queryService, reservationService)
	stockHandler.RegisterRoutes(router.Group("/api/v1"))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
