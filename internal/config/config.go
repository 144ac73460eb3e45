// Package config holds the process configuration as an explicit struct
// assembled from the environment, so no package carries hidden
// process-wide state.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dpatel/binance-collector/internal/scheduler"
)

// Config is everything the collector binaries need beyond the
// interactive run parameters.
type Config struct {
	BaseURL     string
	DataDir     string
	HTTPTimeout time.Duration
	QueryPause  time.Duration

	// Optional integrations; each is enabled by its setting being
	// non-empty.
	CatalogPath   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// FromEnv assembles the configuration from environment variables,
// falling back to defaults where unset.
func FromEnv() Config {
	return Config{
		BaseURL:       os.Getenv("BINANCE_BASE_URL"),
		DataDir:       EnvString("DATA_DIR", "binance_data"),
		HTTPTimeout:   time.Duration(EnvInt("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		QueryPause:    time.Duration(EnvInt("QUERY_PAUSE_MS", int(scheduler.DefaultQueryPause/time.Millisecond))) * time.Millisecond,
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvInt("REDIS_DB", 0),
	}
}

func EnvString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func EnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
