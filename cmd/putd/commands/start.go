package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/api"
	"github.com/jasonlovesdoggo/put/pkg/api/middleware"
	"github.com/jasonlovesdoggo/put/pkg/config"
	"github.com/jasonlovesdoggo/put/pkg/ingest"
	"github.com/jasonlovesdoggo/put/pkg/metrics"
	"github.com/jasonlovesdoggo/put/pkg/tus"
	"github.com/jasonlovesdoggo/put/pkg/tus/scratch"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the put upload server",
	Long: `Start the put upload server with the specified configuration.

The server runs in the foreground until interrupted. Use --config to
specify a custom configuration file, or it will use the default
location at $XDG_CONFIG_HOME/put/config.toml.

Examples:
  # Start with the default config location
  putd start

  # Start with a custom config file
  putd start --config /etc/put/config.toml

  # Start with environment variable overrides
  PUT_LOGGING_LEVEL=DEBUG putd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("%s - resumable upload server\n", cfg.AppName)
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics (if enabled)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", "path", "/metrics")
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Scratch store holds uploads still in flight
	scratchStore, err := scratch.New(cfg.Tus.FilesDir)
	if err != nil {
		return fmt.Errorf("failed to initialize scratch store: %w", err)
	}
	logger.Info("Scratch store ready", "dir", scratchStore.Dir())

	// Backend for completed files
	backend, err := config.NewStorage(ctx, cfg, metrics.NewStorageMetrics())
	if err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	logger.Info("Storage backend ready", "type", cfg.StorageType)

	// Completion pipeline moves finished uploads into the backend
	pipeline := ingest.New(backend, scratchStore)

	authToken := cfg.API.AuthToken
	uploads := tus.NewHandler(scratchStore, pipeline, tus.Config{
		Prefix:           cfg.Tus.Prefix,
		MaxSize:          cfg.Tus.MaxSize.Int64(),
		ExpirationPeriod: cfg.Tus.ExpirationPeriod,
		Authorize: func(r *http.Request) bool {
			return middleware.TokenMatches(authToken, r)
		},
	}, metrics.NewUploadMetrics())
	logger.Info("Upload engine ready",
		"prefix", uploads.BasePath(),
		"max_size", cfg.Tus.MaxSize.String(),
		"expiration_period", cfg.Tus.ExpirationPeriod)

	router := api.NewRouter(cfg, uploads, backend)
	srv := api.NewServer(cfg.Server, router)

	// Reclaim expired uploads in the background
	go uploads.RunSweeper(ctx)

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for server to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
