// Package config provides configuration management for the budget planner.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig
	Redis   RedisConfig
	Server  ServerConfig
	User    string
	Debug   bool
}

// StorageConfig represents local persistence configuration.
type StorageConfig struct {
	DataDir        string
	DBPath         string
	BoltPath       string
	ExportDir      string
	Backend        string
	CategoriesFile string
}

// RedisConfig represents the remote sync store configuration.
// An empty Addr disables remote sync.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Port string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := strings.ToLower(getEnvOrDefault("BUDGET_STORAGE", BackendBolt))
	if backend != BackendBolt && backend != BackendSQLite {
		return nil, fmt.Errorf("invalid BUDGET_STORAGE %q: expected %s or %s", backend, BackendBolt, BackendSQLite)
	}

	config := &Config{
		Storage: StorageConfig{
			DataDir:        getEnvOrDefault("BUDGET_DATA_DIR", "./data"),
			DBPath:         os.Getenv("BUDGET_DB_PATH"),
			BoltPath:       os.Getenv("BUDGET_BOLT_PATH"),
			ExportDir:      os.Getenv("BUDGET_EXPORT_DIR"),
			Backend:        backend,
			CategoriesFile: os.Getenv("BUDGET_CATEGORIES_FILE"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		User:  os.Getenv("BUDGET_USER"),
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// RemoteEnabled reports whether a remote sync store is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Redis.Addr != ""
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) == 0 {
			continue
		}

		var value string
		switch path[0] {
		case "storage":
			if len(path) < 2 {
				continue
			}
			switch path[1] {
			case "dataDir":
				value = c.Storage.DataDir
			case "dbPath":
				value = c.Storage.DBPath
			case "boltPath":
				value = c.Storage.BoltPath
			case "backend":
				value = c.Storage.Backend
			case "categoriesFile":
				value = c.Storage.CategoriesFile
			}
		case "redis":
			if len(path) < 2 {
				continue
			}
			switch path[1] {
			case "addr":
				value = c.Redis.Addr
			}
		case "server":
			if len(path) < 2 {
				continue
			}
			switch path[1] {
			case "port":
				value = c.Server.Port
			}
		case "user":
			value = c.User
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
