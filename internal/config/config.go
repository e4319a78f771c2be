// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for snapshot storage (always absolute)
	CalendarsDir string // Directory of YAML calendar definitions, empty disables loading
	LogLevel     string
	Port         int
	DevMode      bool

	// Warm-up and query window, in whole years around the current year.
	YearsBack    int
	YearsForward int

	// SnapshotDB enables the on-disk snapshot store.
	SnapshotDB bool

	// WarmupSchedule is a cron expression for the periodic warm-up job.
	WarmupSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("CALENDARS_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		CalendarsDir:   getEnv("CALENDARS_DIR", ""),
		Port:           getEnvAsInt("PORT", 8080),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		YearsBack:      getEnvAsInt("CALENDARS_YEARS_BACK", 10),
		YearsForward:   getEnvAsInt("CALENDARS_YEARS_FORWARD", 1),
		SnapshotDB:     getEnvAsBool("CALENDARS_SNAPSHOT_DB", true),
		WarmupSchedule: getEnv("CALENDARS_WARMUP_SCHEDULE", "0 5 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.YearsBack < 0 || c.YearsForward < 0 {
		return fmt.Errorf("warm-up window years must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
