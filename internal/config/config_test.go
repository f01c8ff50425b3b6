package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a scratch directory so no stray .env file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.MetricsAddr != DefaultMetricsAddr {
		t.Errorf("MetricsAddr = %q, want %q", cfg.MetricsAddr, DefaultMetricsAddr)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should default to false")
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %s, want %s", cfg.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CALINVITE_HTTP_ADDR", ":9999")
	t.Setenv("CALINVITE_TOKEN_DIR", "/var/lib/calinvite/tokens")
	t.Setenv("CALINVITE_CREDENTIALS_FILE", "/etc/calinvite/credentials.json")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_ADDR", ":9191")
	t.Setenv("CALINVITE_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("CALINVITE_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.TokenDir != "/var/lib/calinvite/tokens" {
		t.Errorf("TokenDir = %q", cfg.TokenDir)
	}
	if cfg.CredentialsFile != "/etc/calinvite/credentials.json" {
		t.Errorf("CredentialsFile = %q", cfg.CredentialsFile)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true")
	}
	if cfg.MetricsAddr != ":9191" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %s", cfg.ShutdownTimeout)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadInvalidShutdownTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CALINVITE_SHUTDOWN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unparseable shutdown timeout")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTPAddr:        ":8080",
		TokenDir:        "/tmp/tokens",
		CredentialsFile: "/tmp/credentials.json",
		MetricsAddr:     ":9090",
		ShutdownTimeout: 30 * time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: false},
		{name: "empty http addr", mutate: func(c *Config) { c.HTTPAddr = "" }, wantErr: true},
		{name: "empty token dir", mutate: func(c *Config) { c.TokenDir = "" }, wantErr: true},
		{name: "empty credentials file", mutate: func(c *Config) { c.CredentialsFile = "" }, wantErr: true},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
