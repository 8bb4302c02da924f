// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	threshold := cfg.Matching.MinConfidence
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Driver       string `yaml:"driver"` // sqlite or postgres
	DatabasePath string `yaml:"database_path"`
	DatabaseURL  string `yaml:"database_url"`
}

// MatchingConfig holds the matcher defaults
type MatchingConfig struct {
	MinConfidence   float64 `yaml:"min_confidence"`
	WindowDays      int     `yaml:"window_days"`
	AmountTolerance float64 `yaml:"amount_tolerance"`
	AmountMode      string  `yaml:"amount_mode"` // signed or magnitude
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	m := matcher.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			Driver:       "sqlite",
			DatabasePath: "homebudget.db",
		},
		Matching: MatchingConfig{
			MinConfidence:   m.MinConfidence,
			WindowDays:      m.WindowDays,
			AmountTolerance: m.AmountTolerance,
			AmountMode:      string(m.AmountMode),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// Load reads and parses the config file. Keys missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${DATABASE_URL})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	def := Default()

	origins := def.Server.AllowedOrigins
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		origins = splitList(val)
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", def.Server.Port),
			AllowedOrigins: origins,
		},
		Storage: StorageConfig{
			Driver:       getEnv("HOMEBUDGET_DB_DRIVER", def.Storage.Driver),
			DatabasePath: getEnv("HOMEBUDGET_DB_PATH", def.Storage.DatabasePath),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
		},
		Matching: MatchingConfig{
			MinConfidence:   getEnvFloat("MATCH_MIN_CONFIDENCE", def.Matching.MinConfidence),
			WindowDays:      getEnvInt("MATCH_WINDOW_DAYS", def.Matching.WindowDays),
			AmountTolerance: getEnvFloat("MATCH_AMOUNT_TOLERANCE", def.Matching.AmountTolerance),
			AmountMode:      getEnv("MATCH_AMOUNT_MODE", def.Matching.AmountMode),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", def.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", def.Observability.Logging.Format),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// Validate checks the values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.DatabasePath == "" {
			errs = append(errs, errors.New("storage.database_path is required for sqlite"))
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of sqlite, postgres", c.Storage.Driver))
	}

	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("matching.min_confidence %v is outside [0, 1]", c.Matching.MinConfidence))
	}
	if c.Matching.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("matching.window_days %d is negative", c.Matching.WindowDays))
	}
	if c.Matching.AmountTolerance < 0 {
		errs = append(errs, fmt.Errorf("matching.amount_tolerance %v is negative", c.Matching.AmountTolerance))
	}
	if !matcher.AmountMode(c.Matching.AmountMode).Valid() {
		errs = append(errs, fmt.Errorf("matching.amount_mode %q is not one of signed, magnitude", c.Matching.AmountMode))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}

// MatcherConfig converts the matching section for the matcher package.
func (c *Config) MatcherConfig() matcher.Config {
	return matcher.Config{
		MinConfidence:   c.Matching.MinConfidence,
		WindowDays:      c.Matching.WindowDays,
		AmountTolerance: c.Matching.AmountTolerance,
		AmountMode:      matcher.AmountMode(c.Matching.AmountMode),
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
