package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the function
type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required,numeric"`
	RoutePrefix string
	Storage     StorageConfig
	Database    DatabaseConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
}

// StorageConfig selects and addresses the table backend
type StorageConfig struct {
	Backend          string `validate:"oneof=azure sqlite memory"`
	TableName        string `validate:"required,alphanum,min=3,max=63"`
	ConnectionString string `validate:"required_if=Backend azure"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"oneof=text json"`
}

// RateLimitConfig configures the per-process token bucket; zero RPS disables it
type RateLimitConfig struct {
	RPS   float64 `validate:"gte=0"`
	Burst int     `validate:"gte=0"`
}

// IsProduction reports whether the function runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	// Dotted keys never match an environment variable through AutomaticEnv,
	// so the host-provided name is always consulted before the fallback.
	if err := v.BindEnv("storage.connection_string", "AzureWebJobsStorage", "STORAGE_CONNECTION_STRING"); err != nil {
		return nil, fmt.Errorf("failed to bind storage connection string: %w", err)
	}
	if err := v.BindEnv("server.port", "FUNCTIONS_CUSTOMHANDLER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind port: %w", err)
	}

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("ROUTE_PREFIX", "api")
	v.SetDefault("STORAGE_BACKEND", "azure")
	v.SetDefault("TABLE_NAME", "contact")
	v.SetDefault("SQLITE_PATH", "./data/contacts.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 0)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("server.port"),
		RoutePrefix: strings.Trim(v.GetString("ROUTE_PREFIX"), "/"),
		Storage: StorageConfig{
			Backend:          strings.ToLower(v.GetString("STORAGE_BACKEND")),
			TableName:        v.GetString("TABLE_NAME"),
			ConnectionString: v.GetString("storage.connection_string"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if config.Log.Format == "" {
		config.Log.Format = "text"
		if config.IsProduction() {
			config.Log.Format = "json"
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the struct tags and the cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Storage.Backend == "sqlite" {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("config validation failed: RATE_LIMIT_BURST must be positive when RATE_LIMIT_RPS is set")
	}

	return nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
