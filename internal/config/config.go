package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"clam-browse/internal/logger"
)

// Config holds everything the catalog service reads from the environment
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
	RolloutKey  string

	LogLevel  string
	LogFormat string

	PageSize    int
	MaxPageSize int
}

// Load reads an optional .env file and then the environment. A missing .env file is not an error.
func Load(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %v: %w", envPath, err)
	}

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RolloutKey:  os.Getenv("ROLLOUT_KEY"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		PageSize:    getEnvAsInt("BROWSE_PAGE_SIZE", 10),
		MaxPageSize: getEnvAsInt("BROWSE_MAX_PAGE_SIZE", 100),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.PageSize < 1 || cfg.MaxPageSize < cfg.PageSize {
		return nil, fmt.Errorf("invalid page sizes: default %d, max %d", cfg.PageSize, cfg.MaxPageSize)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warnf("env %s=%q is not an int, using %d", key, raw, fallback)
		return fallback
	}
	return v
}
