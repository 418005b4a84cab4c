package config

import (
	"os"
	"runtime"
	"strconv"

	"bootstat/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Bootstrap BootstrapConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Data      DataConfig
}

// BootstrapConfig holds the default analysis parameters
type BootstrapConfig struct {
	Replications int
	Alpha        float64
	Seed         int64
	Workers      int
	Method       string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds run registry settings. An empty URL disables
// persistence entirely.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data input settings
type DataConfig struct {
	InputFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Bootstrap: loadBootstrapConfig(),
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Data:      loadDataConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Replications: getEnvIntOrDefault("BOOTSTRAP_REPLICATIONS", 5000),
		Alpha:        getEnvFloatOrDefault("BOOTSTRAP_ALPHA", 0.05),
		Seed:         getEnvInt64OrDefault("BOOTSTRAP_SEED", 42),
		Workers:      getEnvIntOrDefault("BOOTSTRAP_WORKERS", runtime.NumCPU()),
		Method:       getEnvOrDefault("BOOTSTRAP_METHOD", "spearman"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		InputFile: getEnvOrDefault("INPUT_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Bootstrap.Replications <= 0 {
		return errors.ConfigInvalid("BOOTSTRAP_REPLICATIONS must be positive")
	}
	if config.Bootstrap.Alpha <= 0 || config.Bootstrap.Alpha >= 1 {
		return errors.ConfigInvalid("BOOTSTRAP_ALPHA must lie strictly between 0 and 1")
	}
	if config.Bootstrap.Workers <= 0 {
		return errors.ConfigInvalid("BOOTSTRAP_WORKERS must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
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
