package app

import (
	"os"
	"strconv"
	"time"

	"github.com/teamshiksha/accounts/pkg/jwtx"
)

type Config struct {
	Issuer string // Issuer claim for access tokens

	NumKeys      int           // Optional: number of signing keys to generate (default: 1, max: 10)
	DatabaseFile string        // Optional: path to SQLite database file (default: ./accounts.db)
	PepperFile   string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	AccessTTL    time.Duration // Access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Refresh token lifetime (default: 168h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired token cleanup interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("ACCOUNTS_ISSUER", "accounts"),
		DatabaseFile:         getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:           getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),
		AccessTTL:            getEnvDurationOrDefault("ACCOUNTS_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvDurationOrDefault("ACCOUNTS_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if numKeysStr := os.Getenv("ACCOUNTS_NUM_KEYS"); numKeysStr != "" {
		if numKeys, err := strconv.Atoi(numKeysStr); err == nil {
			cfg.NumKeys = numKeys
		}
		// If parsing fails, NumKeys remains 0 (KeyManager applies its default)
	}

	return cfg
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
