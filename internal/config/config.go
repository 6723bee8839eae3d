package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultDatabaseDSN = "root:password@tcp(127.0.0.1:3306)/picshare?parseTime=true"

var ErrDefaultDSNInProduction = errors.New("DATABASE_DSN must be set in production environment")

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseDSN    string
	MigrateOnStart bool
	PostsPerPage   int

	// Per-IP limits for /register and /login.
	RateLimitRPS   float64
	RateLimitBurst int

	// Token cache is disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TokenCacheTTL time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDatabaseDSN),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		PostsPerPage:   getEnvPositiveInt("POSTS_PER_PAGE", 15),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvPositiveInt("RATE_LIMIT_BURST", 10),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		TokenCacheTTL:  getEnvDuration("TOKEN_CACHE_TTL", time.Minute),
	}

	if cfg.Env == "production" && cfg.DatabaseDSN == defaultDatabaseDSN {
		return Config{}, ErrDefaultDSNInProduction
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvPositiveInt is getEnvInt that also falls back on values below 1.
func getEnvPositiveInt(key string, fallback int) int {
	if v := getEnvInt(key, fallback); v > 0 {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
