package config

import (
	"strings"
	"time"

	"github.com/jasonlovesdoggo/put/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	if cfg.AppName == "" {
		cfg.AppName = "put"
	}
	if cfg.StorageType == "" {
		cfg.StorageType = StorageTypeLocal
	}

	applyServerDefaults(&cfg.Server)
	applyLocalStorageDefaults(&cfg.LocalStorage)
	applyS3StorageDefaults(&cfg.S3Storage)
	applyTusDefaults(&cfg.Tus)
	applyAPIDefaults(&cfg.API)
	applyLoggingDefaults(&cfg.Logging, cfg.Debug)
}

// applyServerDefaults sets HTTP server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

// applyLocalStorageDefaults sets filesystem backend defaults.
func applyLocalStorageDefaults(cfg *LocalStorageConfig) {
	if cfg.BasePath == "" {
		cfg.BasePath = "static"
	}
}

// applyS3StorageDefaults sets S3 backend defaults.
// Bucket name and credentials have no defaults; they are required when
// storage_type is "s3" and checked by Validate.
func applyS3StorageDefaults(cfg *S3StorageConfig) {
	if cfg.RegionName == "" {
		cfg.RegionName = "us-east-1"
	}
}

// applyTusDefaults sets upload protocol defaults.
func applyTusDefaults(cfg *TusConfig) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = bytesize.GiB
	}
	if cfg.ExpirationPeriod == 0 {
		cfg.ExpirationPeriod = 24 * time.Hour
	}
	if cfg.FilesDir == "" {
		cfg.FilesDir = "content"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "files"
	}
	// Mounting happens on a clean path segment
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
}

// applyAPIDefaults sets management API defaults.
func applyAPIDefaults(cfg *APIConfig) {
	if cfg.Prefix == "" {
		cfg.Prefix = "/api"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if len(cfg.CORSHeaders) == 0 {
		cfg.CORSHeaders = []string{"*"}
	}
	// AuthToken has no default; empty means authentication is disabled
}

// applyLoggingDefaults sets logging defaults and normalizes values.
// Debug mode forces the DEBUG level.
func applyLoggingDefaults(cfg *LoggingConfig, debug bool) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if debug {
		cfg.Level = "DEBUG"
	}
	// Normalize log level to uppercase for consistent internal
	// representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// GetDefaultConfig returns a Config struct with all default values
// applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Running without a config file
func GetDefaultConfig() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
