package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selection modes
const (
	BackendAuto     = "auto"
	BackendEngine   = "engine"
	BackendEmulated = "emulated"
)

// Config holds application configuration
type Config struct {
	// Backend is auto, engine or emulated
	Backend string

	// Engine backend
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// KVPath is the bbolt file holding the emulated collections and the session
	KVPath string

	SessionDuration time.Duration
	SessionSecret   string
	BcryptCost      int

	// Link-code email (Amazon SES); disabled when SESFromEmail is empty
	SESRegion    string
	SESFromEmail string
	SESFromName  string

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Backend:         getEnv("BACKEND", BackendAuto),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./eldercare.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		KVPath:          getEnv("KV_PATH", "./eldercare.kv"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		SessionSecret:   getEnv("SESSION_SECRET", "change-me-in-production"),
		BcryptCost:      getInt("BCRYPT_COST", 10),
		SESRegion:       getEnv("SES_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "Eldercare"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
