package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort         int
	DatabasePath       string
	JWTSecret          string // HMAC key for signing auth tokens
	AllowedOrigin      string // Frontend origin for CORS
	EventRetentionDays int    // Activity events older than this are pruned
	EventPruneSchedule string // Cron expression for the pruning worker
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	retentionStr := getEnv("EVENT_RETENTION_DAYS", "30")
	retention, err := strconv.Atoi(retentionStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./tarefas.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		EventRetentionDays: retention,
		EventPruneSchedule: getEnv("EVENT_PRUNE_SCHEDULE", "0 4 * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
