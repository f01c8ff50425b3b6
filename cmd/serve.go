package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calinvite/calinvite/internal/config"
	"github.com/calinvite/calinvite/internal/google"
	"github.com/calinvite/calinvite/internal/instrumentation"
	"github.com/calinvite/calinvite/internal/invite"
	"github.com/calinvite/calinvite/internal/logging"
	"github.com/calinvite/calinvite/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode       bool
		httpAddr        string
		tokenDir        string
		credentialsFile string
		metricsEnabled  bool
		metricsAddr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

The server exposes:
  POST /calendar/create-event  create an event with a Meet link and email
                               the participants
  GET  /healthz, /readyz       Kubernetes probes

Configuration is read from the environment (a .env file in the working
directory is honored); flags override environment values.

Google Credentials:
  The application credential file (client id and secret) is read from
  --credentials-file or CALINVITE_CREDENTIALS_FILE. Per-user refresh tokens
  are stored under --token-dir or CALINVITE_TOKEN_DIR, one JSON file per
  user email. A user without a stored token triggers the interactive
  consent flow on first use; pre-authorize users with the authorize
  subcommand for headless deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags override environment values.
			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("token-dir") {
				cfg.TokenDir = tokenDir
			}
			if cmd.Flags().Changed("credentials-file") {
				cfg.CredentialsFile = credentialsFile
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debugMode
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging. Can also use CALINVITE_DEBUG env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", config.DefaultHTTPAddr, "HTTP server address. Can also use CALINVITE_HTTP_ADDR env var.")
	cmd.Flags().StringVar(&tokenDir, "token-dir", "", "Directory holding per-user refresh token files. Can also use CALINVITE_TOKEN_DIR env var.")
	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Path to the Google application credential file. Can also use CALINVITE_CREDENTIALS_FILE env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg config.Config) error {
	logger := newLogger(cfg.Debug)
	slog.SetDefault(logger)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Wire up the credential layer and the pipeline
	oauthConf, err := google.LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to load Google credentials: %w", err)
	}

	store := google.NewTokenStore(cfg.TokenDir, logger)
	authorizer := google.NewAuthorizer(oauthConf, store, logger)
	invites := invite.NewService(authorizer, provider.Metrics(), logger)

	apiServer := server.New(server.Config{
		Addr:    cfg.HTTPAddr,
		Invites: invites,
		Metrics: provider.Metrics(),
		Logger:  logger,
	})

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stopCancel()

	if err := apiServer.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("error shutting down metrics server", logging.Err(err))
		}
	}

	logger.Info("server gracefully stopped")
	return nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
