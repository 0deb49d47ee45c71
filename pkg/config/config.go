// Package config provides configuration management for the sync daemon.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Actual   ActualConfig
	Spliit   SpliitConfig
	Sync     SyncConfig
	Debug    bool
	LogLevel slog.Level
}

// ActualConfig represents Actual Budget API configuration.
type ActualConfig struct {
	BaseURL           string
	Password          string
	Budget            string
	SplitterPayeeID   string
	SplitterAccountID string
	PollInterval      time.Duration
	TriggerTag        string
}

// SpliitConfig represents Spliit API configuration. GroupID and PayerID are
// both required to enable the integration; when either is missing the daemon
// runs Actual-only.
type SpliitConfig struct {
	BaseURL      string
	GroupID      string
	PayerID      string
	PollInterval time.Duration
}

// SyncConfig represents daemon-level configuration.
type SyncConfig struct {
	CategoryMappingFile string
	DBPath              string // empty disables the mirror history log
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

	actualInterval, err := parseSecondsEnv("ACTUAL_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid ACTUAL_POLL_INTERVAL: %w", err)
	}

	spliitInterval, err := parseSecondsEnv("SPLIIT_POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SPLIIT_POLL_INTERVAL: %w", err)
	}

	config := &Config{
		Actual: ActualConfig{
			BaseURL:           os.Getenv("ACTUAL_BASEURL"),
			Password:          os.Getenv("ACTUAL_PASSWORD"),
			Budget:            os.Getenv("ACTUAL_BUDGET"),
			SplitterPayeeID:   os.Getenv("ACTUAL_SPLITTER_PAYEE_ID"),
			SplitterAccountID: os.Getenv("ACTUAL_SPLITTER_ACCOUNT_ID"),
			PollInterval:      actualInterval,
			TriggerTag:        getEnvOrDefault("ACTUAL_TRIGGER_TAG", "#shared"),
		},
		Spliit: SpliitConfig{
			BaseURL:      getEnvOrDefault("SPLIIT_BASE_URL", "https://spliit.app"),
			GroupID:      os.Getenv("SPLIIT_GROUP_ID"),
			PayerID:      os.Getenv("SPLIIT_PAYER_ID"),
			PollInterval: spliitInterval,
		},
		Sync: SyncConfig{
			CategoryMappingFile: getEnvOrDefault("SPLIIT_CATEGORY_MAPPING_FILE", "category-mapping.json"),
			DBPath:              os.Getenv("SYNC_DB_PATH"),
		},
		Debug:    os.Getenv("DEBUG") == "true",
		LogLevel: parseLogLevel(getEnvOrDefault("LOGGING_LEVEL", "INFO")),
	}

	return config, nil
}

// SpliitEnabled reports whether the Spliit integration is configured.
func (c *Config) SpliitEnabled() bool {
	return c.Spliit.GroupID != "" && c.Spliit.PayerID != ""
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "actual":
			switch path[1] {
			case "baseUrl":
				value = c.Actual.BaseURL
			case "password":
				value = c.Actual.Password
			case "budget":
				value = c.Actual.Budget
			case "splitterPayeeId":
				value = c.Actual.SplitterPayeeID
			case "splitterAccountId":
				value = c.Actual.SplitterAccountID
			}
		case "spliit":
			switch path[1] {
			case "baseUrl":
				value = c.Spliit.BaseURL
			case "groupId":
				value = c.Spliit.GroupID
			case "payerId":
				value = c.Spliit.PayerID
			}
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

// parseSecondsEnv parses an integer number of seconds from an environment
// variable. Returns defaultValue if the environment variable is not set.
func parseSecondsEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid interval value for %s: %s", key, value)
	}

	return time.Duration(seconds) * time.Second, nil
}

// parseLogLevel maps a LOGGING_LEVEL value to a slog level.
// Unknown values fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
