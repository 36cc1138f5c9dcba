package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration, read from the environment
type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	BaseURL     string `mapstructure:"BASE_URL"`

	// Database
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // postgres, sqlite
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`

	// Sessions
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Blog
	PostsPerPage      int  `mapstructure:"BLOG_POSTS_PER_PAGE"`
	ShowUncategorized bool `mapstructure:"BLOG_SHOW_UNCATEGORIZED"`
	RateLimitAuth     int  `mapstructure:"RATE_LIMIT_AUTH"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	// Redis (optional)
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Post images
	StorageBackend string `mapstructure:"STORAGE_BACKEND"` // local, s3
	MediaRoot      string `mapstructure:"MEDIA_ROOT"`
	AWSRegion      string `mapstructure:"AWS_REGION"`
	AWSBucket      string `mapstructure:"AWS_BUCKET"`
	CDNBaseURL     string `mapstructure:"CDN_BASE_URL"`

	// Mail
	EmailBackend string `mapstructure:"EMAIL_BACKEND"` // log, ses
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	// Tracing
	OTelEnabled      bool    `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint     string  `mapstructure:"OTEL_ENDPOINT"`
	OTelSamplingRate float64 `mapstructure:"OTEL_SAMPLING_RATE"`
}

var defaults = map[string]interface{}{
	"PORT":                    "8000",
	"ENVIRONMENT":             "development",
	"BASE_URL":                "http://localhost:8000",
	"DATABASE_DRIVER":         "postgres",
	"DATABASE_URL":            "",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "postgres",
	"DB_PASSWORD":             "",
	"DB_NAME":                 "blogicum",
	"DB_SSLMODE":              "disable",
	"SESSION_SECRET":          "",
	"BLOG_POSTS_PER_PAGE":     10,
	"BLOG_SHOW_UNCATEGORIZED": false,
	"RATE_LIMIT_AUTH":         10,
	"LOG_LEVEL":               "info",
	"LOG_FILE":                "server.log",
	"REDIS_HOST":              "",
	"REDIS_PORT":              "6379",
	"REDIS_PASSWORD":          "",
	"STORAGE_BACKEND":         "local",
	"MEDIA_ROOT":              "./media",
	"AWS_REGION":              "us-east-1",
	"AWS_BUCKET":              "",
	"CDN_BASE_URL":            "",
	"EMAIL_BACKEND":           "log",
	"EMAIL_FROM":              "no-reply@blogicum.local",
	"OTEL_ENABLED":            false,
	"OTEL_ENDPOINT":           "localhost:4318",
	"OTEL_SAMPLING_RATE":      1.0,
}

// Load reads an optional .env file, then the process environment, on top of defaults.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	envLoaded := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, envLoaded, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, envLoaded, err
	}

	return &cfg, envLoaded, nil
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("BLOG_POSTS_PER_PAGE must be positive, got %d", c.PostsPerPage)
	}
	if c.RateLimitAuth <= 0 {
		return fmt.Errorf("RATE_LIMIT_AUTH must be positive, got %d", c.RateLimitAuth)
	}

	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", c.DatabaseDriver)
	}

	switch c.StorageBackend {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q (want local or s3)", c.StorageBackend)
	}
	if c.StorageBackend == "s3" && c.AWSBucket == "" {
		return fmt.Errorf("AWS_BUCKET is required when STORAGE_BACKEND=s3")
	}

	switch c.EmailBackend {
	case "log", "ses":
	default:
		return fmt.Errorf("unsupported EMAIL_BACKEND %q (want log or ses)", c.EmailBackend)
	}

	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required in production")
	}

	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DatabaseDriver == "sqlite" {
		return "blogicum.db"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
	if c.DBPassword != "" {
		dsn += " password=" + c.DBPassword
	}
	return dsn
}

// SecretKey returns the session signing key, with a fixed development fallback
func (c *Config) SecretKey() []byte {
	if c.SessionSecret == "" {
		return []byte("blogicum-development-secret")
	}
	return []byte(c.SessionSecret)
}
