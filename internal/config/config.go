// Package config loads server settings. Sources apply in order, later ones
// winning: built-in defaults, an optional YAML file, a .env file, the process
// environment, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/lifeareas/pkg/logging"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the server settings.
type Config struct {
	Addr string `yaml:"addr" env:"ADDR"`

	DBDriver    string `yaml:"db_driver" env:"DB_DRIVER"`
	DBPath      string `yaml:"db_path" env:"DB_PATH"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenDuration time.Duration `yaml:"token_duration" env:"TOKEN_DURATION"`
	// AuthRequired rejects anonymous life area requests instead of
	// accepting a user_id in the request body.
	AuthRequired bool `yaml:"auth_required" env:"AUTH_REQUIRED"`

	AppEnv string `yaml:"app_env" env:"APP_ENV"`
	Debug  bool   `yaml:"debug" env:"APP_DEBUG"`

	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"RATE_BURST"`

	DefaultAreasFile string `yaml:"default_areas_file" env:"DEFAULT_AREAS_FILE"`
	LogLevel         string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		DBDriver:      DriverSQLite,
		DBPath:        "./data/lifeareas.db",
		JWTSecret:     "dev-secret-change-me",
		TokenDuration: 24 * time.Hour,
		AppEnv:        "production",
		RateLimit:     20,
		RateBurst:     40,
		LogLevel:      "info",
	}
}

// Load builds the configuration from args (without the program name) and the environment.
func Load(args []string) (*Config, error) {
	var configFile, envFile, addr string

	flagSet := pflag.NewFlagSet("lifeareas", pflag.ContinueOnError)
	flagSet.StringVar(&configFile, "config", "", "path to a YAML config file (env CONFIG_FILE)")
	flagSet.StringVar(&envFile, "env-file", ".env", "path to a .env file; missing files are ignored")
	flagSet.StringVar(&addr, "addr", "", "listen address, overrides ADDR")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if flagSet.Changed("addr") {
		cfg.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown db_driver %q", c.DBDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if c.TokenDuration <= 0 {
		return errors.New("token_duration must be positive")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("rate_limit and rate_burst must be positive")
	}
	return nil
}

// ExposeErrorDetail reports whether internal error messages may reach clients.
func (c *Config) ExposeErrorDetail() bool {
	return c.Debug || strings.EqualFold(c.AppEnv, "development")
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}
