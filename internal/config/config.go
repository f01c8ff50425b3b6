package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default values for the server configuration.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultMetricsAddr     = ":9090"
	DefaultTokenDirName    = "tokens"
	DefaultCredentialsFile = "credentials.json"
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds all resolved settings for the service. It is constructed once
// at startup and passed explicitly into the token store, authorizer, and
// server constructors; nothing reads paths from globals after this point.
type Config struct {
	// HTTPAddr is the listen address of the API server (e.g. ":8080").
	HTTPAddr string

	// TokenDir is the directory holding one stored credential file per user,
	// named <userEmail>.json.
	TokenDir string

	// CredentialsFile is the path to the Google application credential file
	// (client id/secret, "installed" or "web" key).
	CredentialsFile string

	// MetricsEnabled starts the dedicated metrics server when true.
	MetricsEnabled bool

	// MetricsAddr is the listen address of the metrics server.
	MetricsAddr string

	// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration

	// Debug enables debug-level logging.
	Debug bool
}

// Load builds a Config from the environment. A .env file in the working
// directory is read first if present; real environment variables win over it.
func Load() (Config, error) {
	// Missing .env is fine; only a malformed one is an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg := Config{
		HTTPAddr:        getEnvOrDefault("CALINVITE_HTTP_ADDR", DefaultHTTPAddr),
		TokenDir:        getEnvOrDefault("CALINVITE_TOKEN_DIR", filepath.Join(cwd, DefaultTokenDirName)),
		CredentialsFile: getEnvOrDefault("CALINVITE_CREDENTIALS_FILE", filepath.Join(cwd, DefaultCredentialsFile)),
		MetricsEnabled:  getEnvBoolOrDefault("METRICS_ENABLED", false),
		MetricsAddr:     getEnvOrDefault("METRICS_ADDR", DefaultMetricsAddr),
		ShutdownTimeout: DefaultShutdownTimeout,
		Debug:           getEnvBoolOrDefault("CALINVITE_DEBUG", false),
	}

	if v := os.Getenv("CALINVITE_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CALINVITE_SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP listen address must not be empty")
	}
	if c.TokenDir == "" {
		return fmt.Errorf("token directory must not be empty")
	}
	if c.CredentialsFile == "" {
		return fmt.Errorf("credentials file path must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
