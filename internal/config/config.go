package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	// ErrLoad is returned when the configuration source cannot be read or decoded.
	ErrLoad = errors.New("failed to load configuration")
	// ErrMissingDatabaseURI is returned when DATABASE_CLOUD is absent or empty.
	ErrMissingDatabaseURI = errors.New("DATABASE_CLOUD environment variable is not defined")
	// ErrInvalid is returned when a loaded value fails validation.
	ErrInvalid = errors.New("invalid configuration")
)

// Config represents the complete application configuration.
// Nested keys fall back to their bare names, so SERVER_PORT and PORT both work.
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DATABASE"`
	Security SecurityConfig `envconfig:"SECURITY"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
	Paths    PathsConfig    `envconfig:"PATHS"`
	Tracing  TracingConfig  `envconfig:"TRACING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"5000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
	JSONBodyLimit   int64         `envconfig:"JSON_BODY_LIMIT" default:"102400" validate:"gt=0"`
}

// DatabaseConfig contains document database configuration
type DatabaseConfig struct {
	URI            string        `envconfig:"DATABASE_CLOUD"`
	Name           string        `envconfig:"DATABASE_NAME"`
	ConnectTimeout time.Duration `envconfig:"DATABASE_CONNECT_TIMEOUT" default:"30s" validate:"gt=0"`
}

// SecurityConfig contains cross-origin and rate limit configuration
type SecurityConfig struct {
	AllowedOrigins []string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000" validate:"min=1,dive,url"`
	RateLimit      RateLimitConfig `envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gte=0"`
	Burst   int     `envconfig:"RATE_LIMIT_BURST" default:"50" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output      string `envconfig:"LOG_OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `envconfig:"LOG_FILE_PATH" default:"logs/app.log"`
	Development bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled     bool    `envconfig:"TRACING_ENABLED" default:"false"`
	Exporter    string  `envconfig:"TRACING_EXPORTER" default:"stdout" validate:"oneof=stdout none"`
	SampleRatio float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1" validate:"gte=0,lte=1"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	UploadsDir string `envconfig:"UPLOADS_DIR" default:"uploads" validate:"required"`
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// EnvFile is the dotenv file merged under the process environment.
	// Defaults to DefaultEnvFile.
	EnvFile string
	// SkipEnvFile reads the process environment only.
	SkipEnvFile bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the dotenv file, decodes the environment into a Config and
// validates it. Process variables take precedence over the file.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if !opts.SkipEnvFile {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("%w: env file %s: %w", ErrLoad, envFile, err)
		}
	}

	// An empty PORT= line means unset, so the default applies.
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
			if err := os.Unsetenv(key); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoad, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	cfg.Database.URI = strings.TrimSpace(cfg.Database.URI)
	if cfg.Database.URI == "" {
		return nil, ErrMissingDatabaseURI
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return &cfg, nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path required for output %q", c.Logging.Output)
	}

	return nil
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// RedactedDatabaseURI returns the connection string with any password masked.
func (c *Config) RedactedDatabaseURI() string {
	return RedactURI(c.Database.URI)
}

// RedactURI masks the password component of a connection string.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "[unparseable]"
	}
	return u.Redacted()
}
