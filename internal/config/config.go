package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Cart     CartConfig
	Delivery DeliveryConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// CartConfig holds cart rules
type CartConfig struct {
	ID          string
	MinQuantity int
}

// DeliveryConfig holds the served postal codes
type DeliveryConfig struct {
	Pincodes []string
}

// DatabaseConfig selects the Postgres order store. Empty URL keeps orders
// in memory.
type DatabaseConfig struct {
	URL string
}

// RedisConfig selects the Redis cart store. Empty Addr keeps the cart in
// memory.
type RedisConfig struct {
	Addr     string
	Password string
}

// KafkaConfig selects the Kafka event bus. No brokers means the in-process
// bus.
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Cart: CartConfig{
			ID:          getEnv("CART_ID", "default"),
			MinQuantity: getEnvAsInt("MIN_CART_QUANTITY", 20),
		},
		Delivery: DeliveryConfig{
			Pincodes: getEnvAsList("DELIVERY_PINCODES", []string{"560001", "110002", "400002", "700001", "500001"}),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			GroupID: getEnv("KAFKA_GROUP_ID", "agrismart"),
		},
	}

	if cfg.Cart.MinQuantity < 1 {
		return nil, fmt.Errorf("MIN_CART_QUANTITY must be at least 1, got %d", cfg.Cart.MinQuantity)
	}
	if strings.TrimSpace(cfg.Cart.ID) == "" {
		return nil, fmt.Errorf("CART_ID must not be blank")
	}
	return cfg, nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
