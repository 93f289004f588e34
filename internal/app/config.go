package app

import (
	"os"
	"strconv"
	"time"

	"github.com/musterhq/muster/pkg/tokenx"
)

type Config struct {
	AccessTTL  time.Duration // Access token lifetime (AUTH_ACCESS_TTL_SEC, default 900s)
	RefreshTTL time.Duration // Refresh token lifetime (AUTH_REFRESH_TTL_SEC, default 30 days)

	AdminUsername string // Optional: first-run admin account name
	AdminPassword string // Optional: first-run admin account password

	DatabaseFile        string        // Path to SQLite database file (default: ./muster.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		AccessTTL:  getEnvSecondsOrDefault("AUTH_ACCESS_TTL_SEC", tokenx.DefaultAccessTTL),
		RefreshTTL: getEnvSecondsOrDefault("AUTH_REFRESH_TTL_SEC", tokenx.DefaultRefreshTTL),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		DatabaseFile:        getEnvOrDefault("MUSTER_DATABASE_FILE", "muster.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Production reports whether the process runs with production hardening:
// secrets must be explicit and cookies are HTTPS-only.
func (c Config) Production() bool {
	return c.Env == "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvSecondsOrDefault parses an integer number of seconds. Values that do
// not parse as a positive integer fall back to the default.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
