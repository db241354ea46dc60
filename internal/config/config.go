package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// DefaultServerTimeLayout matches the checkpoint format existing clients
// already store.
const DefaultServerTimeLayout = "2006-01-02 15:04:05"

type Config struct {
	Port             string
	Environment      string
	DatabaseDriver   string
	DatabaseURL      string
	RedisURL         string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiCacheTTL   time.Duration
	ServerTimeLayout string
	CORSOrigins      string
	SyncRateLimit    int64
	GeminiRateLimit  int64
	RateLimitWindow  time.Duration
	ShutdownTimeout  time.Duration
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "4000"),
		Environment:      getEnv("ENVIRONMENT", "dev"),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:      getEnv("DATABASE_URL", "file:wordsync.db?_busy_timeout=5000"),
		RedisURL:         getEnv("REDIS_URL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiCacheTTL:   getDuration("GEMINI_CACHE_TTL", 24*time.Hour),
		ServerTimeLayout: getEnv("SERVER_TIME_LAYOUT", DefaultServerTimeLayout),
		CORSOrigins:      getEnv("CORS_ORIGINS", "*"),
		SyncRateLimit:    getInt("RATE_LIMIT_SYNC", 120),
		GeminiRateLimit:  getInt("RATE_LIMIT_GEMINI", 30),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", time.Minute),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}
