package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	DatabasePath    string
	UploadsPath     string
	JWTSecret       string
	JanitorSchedule string
	CORSOrigin      string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./vidshelf.db"),
		UploadsPath:     getEnv("UPLOADS_PATH", "./uploads"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "@hourly"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
