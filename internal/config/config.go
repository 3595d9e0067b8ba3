package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// Persistence
	SQLitePath string
	// Redis cache
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	// JWT actor extraction
	JWTSecret string
	// Idempotency store
	IdempotencyPath string
	IdempotencyTTL  time.Duration
	// Kafka
	KafkaBrokers     []string
	KafkaTopicStock  string
	KafkaTopicOrders string
	KafkaGroupID     string
	KafkaClientID    string
	KafkaAcks        string
	KafkaRetries     int
	// OpenTelemetry
	OtelEnabled  bool
	OtelEndpoint string
	// Engine
	EngineMaxRetries int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9093")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	for i, broker := range kafkaBrokers {
		kafkaBrokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		SQLitePath: getEnv("SQLITE_PATH", "./data/inventory.db"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production-min-32-chars"),

		IdempotencyPath: getEnv("IDEMPOTENCY_PATH", ""),
		IdempotencyTTL:  getEnvDuration("IDEMPOTENCY_TTL", 5*time.Minute),

		KafkaBrokers:     kafkaBrokers,
		KafkaTopicStock:  getEnv("KAFKA_TOPIC_STOCK", "inventory.stock"),
		KafkaTopicOrders: getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "inventory-ledger-service"),
		KafkaClientID:    getEnv("KAFKA_CLIENT_ID", "inventory-ledger-service"),
		KafkaAcks:        getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:     getEnvInt("KAFKA_RETRIES", 3),

		OtelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),

		EngineMaxRetries: getEnvInt("ENGINE_MAX_RETRIES", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
