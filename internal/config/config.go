// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"helioscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data loading and cleaning settings
type DataConfig struct {
	// Dir is the directory holding the per-country measurement files.
	Dir string
	// MissingThreshold is the default column-drop threshold for the
	// missing-data filter, in [0,1].
	MissingThreshold float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			Dir:              getEnvOrDefault("HELIOSCOPE_DATA_DIR", "data"),
			MissingThreshold: getEnvFloatOrDefault("MISSING_THRESHOLD", 0.05),
		},
	}

	if raw := os.Getenv("MISSING_THRESHOLD"); raw != "" {
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return nil, errors.ConfigInvalid("MISSING_THRESHOLD must be a number")
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if config.Data.Dir == "" {
		return errors.ConfigInvalid("HELIOSCOPE_DATA_DIR must not be empty")
	}
	if config.Data.MissingThreshold < 0 || config.Data.MissingThreshold > 1 {
		return errors.ConfigInvalid("MISSING_THRESHOLD must be in [0,1]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
