package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        int
	Env         string
	MaxBodySize int64

	// CORS
	AllowedOrigins []string

	// Live feed
	FeedURL          string
	BannerDebounce   time.Duration
	BootstrapTimeout time.Duration
	ObserverHash     string
	TeamSlots        int
	OverlayViews     string

	// Redis
	RedisURL    string
	RedisPrefix string

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// Load loads configuration from a .env file, when present, and environment
// variables. It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Env:         getEnv("ENV", "development"),
		MaxBodySize: int64(getEnvInt("MAX_BODY_SIZE", 1<<20)),

		FeedURL:          getEnv("FEED_URL", "ws://localhost:20081/"),
		BannerDebounce:   getEnvDuration("BANNER_DEBOUNCE", 500*time.Millisecond),
		BootstrapTimeout: getEnvDuration("BOOTSTRAP_TIMEOUT", 10*time.Second),
		ObserverHash:     getEnv("OBSERVER_HASH", ""),
		TeamSlots:        getEnvInt("TEAM_SLOTS", 30),
		OverlayViews:     getEnv("OVERLAY_VIEWS", ""),

		RedisPrefix: getEnv("REDIS_PREFIX", "overlay"),

		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 200),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 50*time.Millisecond),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the production logger and settings apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
