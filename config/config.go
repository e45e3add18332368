// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all simulator configuration.
type Config struct {
	// Angel One credentials
	AngelAPIKey     string
	AngelClientCode string
	AngelPassword   string
	AngelTOTPSecret string

	// Market data
	Exchange       string
	ScripMasterURL string
	ScripCachePath string

	// Infrastructure
	ListenAddr    string
	RedisAddr     string // empty disables Redis event publishing
	RedisPassword string
	SQLitePath    string

	// Simulator
	InitialCash float64
	LogLevel    string
}

// Load reads configuration from environment variables with sensible defaults.
// The four Angel One credentials are required.
func Load() *Config {
	return &Config{
		AngelAPIKey:     mustEnv("ANGEL_API_KEY"),
		AngelClientCode: mustEnv("ANGEL_CLIENT_CODE"),
		AngelPassword:   mustEnv("ANGEL_PASSWORD"),
		AngelTOTPSecret: mustEnv("ANGEL_TOTP_SECRET"),

		Exchange:       getEnv("EXCHANGE", "NSE"),
		ScripMasterURL: getEnv("SCRIP_MASTER_URL", ""),
		ScripCachePath: getEnv("SCRIP_CACHE_PATH", "data/scrip_master_nse.json"),

		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/transactions.db"),

		InitialCash: getEnvFloat("INITIAL_CASH", 10000000.00),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid %s=%q, using default", key, v)
		return fallback
	}
	return f
}
