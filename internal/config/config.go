// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// ErrInvalid is returned when a configuration value is out of range or malformed.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port           int      `env:"PORT, default=8080" json:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=*" json:"allowed_origins"`

	// Backend selection
	UseMock      bool   `env:"USE_SORA_MOCK, default=true" json:"use_mock"`
	MockVideoURL string `env:"MOCK_VIDEO_URL" json:"mock_video_url,omitempty" validate:"omitempty,url"`

	// OpenAI settings
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" json:"-"` // Masked in JSON
	OpenAIBaseURL string `env:"OPENAI_BASE_URL, default=https://api.openai.com/v1" json:"openai_base_url" validate:"url"`

	// Azure OpenAI settings
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT" json:"azure_endpoint,omitempty" validate:"omitempty,url"`
	AzureAPIKey     string `env:"AZURE_OPENAI_API_KEY" json:"-"` // Masked in JSON
	AzureAPIVersion string `env:"AZURE_OPENAI_API_VERSION, default=2024-12-01-preview" json:"azure_api_version"`

	// Outbound HTTP settings
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT, default=30s" json:"http_timeout" validate:"gt=0"`
	HTTPMaxRetries int           `env:"HTTP_MAX_RETRIES, default=0" json:"http_max_retries" validate:"min=0,max=10"`

	// Rate limiting and fallback retention
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW, default=10s" json:"rate_limit_window" validate:"gte=0"`
	ImageCacheTTL   time.Duration `env:"IMAGE_CACHE_TTL, default=1h" json:"image_cache_ttl" validate:"gte=0"`

	// Optional Redis for shared rate limiting and fallback jobs
	RedisURL string `env:"REDIS_URL" json:"-"` // May carry a password

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/sora-studio" json:"temp_dir"`

	// Optional S3 settings for mirroring fallback images
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// AzureConfigured returns true if both the Azure endpoint and key are set.
func (c *Config) AzureConfigured() bool {
	return c.AzureEndpoint != "" && c.AzureAPIKey != ""
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// RedisEnabled returns true if a Redis URL is provided.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and URL formats. Missing credentials are not
// an error: they only decide which backend is attempted.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, UseMock: %t, OpenAIBaseURL: %s, OpenAIAPIKey: %s, AzureEndpoint: %s, AzureAPIKey: %s, AzureAPIVersion: %s, HTTPTimeout: %s, HTTPMaxRetries: %d, RateLimitWindow: %s, ImageCacheTTL: %s, RedisURL: %s, TempDir: %s, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.UseMock,
		c.OpenAIBaseURL,
		mask(c.OpenAIAPIKey),
		c.AzureEndpoint,
		mask(c.AzureAPIKey),
		c.AzureAPIVersion,
		c.HTTPTimeout,
		c.HTTPMaxRetries,
		c.RateLimitWindow,
		c.ImageCacheTTL,
		redactURL(c.RedisURL),
		c.TempDir,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// mask reports only whether a secret is set.
func mask(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "****"
}

// redactURL hides the password of a URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
