package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Auth struct {
		JWTSecret     string
		TokenTTL      time.Duration
		AdminEmail    string
		AdminPassword string
		AdminName     string
	}
	Telemetry struct {
		OnlineWindow  time.Duration
		Retention     time.Duration
		DeviceListTTL time.Duration
	}
	Workers struct {
		RetentionEnabled  bool
		SnapshotEnabled   bool
		RetentionInterval time.Duration
		SnapshotInterval  time.Duration
	}
	RateLimit struct {
		RequestsPerSecond int
		Burst             int
		IngestPerSecond   int
		IngestBurst       int
	}
}

// Load читает конфигурацию из окружения. Секреты обязательны:
// без JWT_SECRET и DB_PASSWORD процесс не стартует.
func Load() (*Config, error) {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "thermolab")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// Auth
	cfg.Auth.TokenTTL = getEnvAsDuration("TOKEN_TTL", 2*time.Hour)
	cfg.Auth.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.Auth.AdminName = getEnv("ADMIN_NAME", "Administrator")

	// Telemetry
	cfg.Telemetry.OnlineWindow = getEnvAsDuration("ONLINE_WINDOW", 5*time.Minute)
	cfg.Telemetry.Retention = getEnvAsDuration("READING_RETENTION", 90*24*time.Hour)
	cfg.Telemetry.DeviceListTTL = getEnvAsDuration("DEVICE_LIST_TTL", 30*time.Second)

	// Workers
	cfg.Workers.RetentionEnabled = getEnvAsBool("RETENTION_ENABLED", true)
	cfg.Workers.SnapshotEnabled = getEnvAsBool("SNAPSHOT_ENABLED", true)
	cfg.Workers.RetentionInterval = getEnvAsDuration("WORKER_RETENTION_INTERVAL", time.Hour)
	cfg.Workers.SnapshotInterval = getEnvAsDuration("WORKER_SNAPSHOT_INTERVAL", time.Minute)

	// Rate Limit
	cfg.RateLimit.RequestsPerSecond = getEnvAsInt("RATE_LIMIT_RPS", 50)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 100)
	cfg.RateLimit.IngestPerSecond = getEnvAsInt("INGEST_RATE_LIMIT_RPS", 5)
	cfg.RateLimit.IngestBurst = getEnvAsInt("INGEST_RATE_LIMIT_BURST", 10)

	// Секреты без значений по умолчанию
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.DB.Password = os.Getenv("DB_PASSWORD")
	if cfg.DB.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
