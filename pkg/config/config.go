// Package config loads and validates the server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jasonlovesdoggo/put/internal/bytesize"
)

// Storage backend identifiers accepted by the storage_type option.
const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

// Config represents the upload server configuration.
//
// This structure captures all static configuration of the server:
//   - Storage backend selection (local filesystem or S3)
//   - HTTP server settings (bind address, timeouts)
//   - Upload protocol settings (size limit, expiration, scratch directory)
//   - Management API settings (prefix, CORS, auth token)
//   - Metrics and logging
//
// Configuration sources (in order of precedence):
//  1. Environment variables (PUT_*)
//  2. Configuration file (TOML)
//  3. Default values (lowest priority)
type Config struct {
	// AppName is the display name reported by the server.
	// Default: "put"
	AppName string `mapstructure:"app_name"`

	// Debug enables verbose request logging and debug log level.
	// Default: false
	Debug bool `mapstructure:"debug"`

	// StorageType selects the completed-file backend.
	// Valid values: local, s3
	StorageType string `mapstructure:"storage_type" validate:"required,oneof=local s3"`

	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`

	// LocalStorage configures the filesystem backend.
	// Only used when StorageType is "local".
	LocalStorage LocalStorageConfig `mapstructure:"local_storage"`

	// S3Storage configures the S3 backend.
	// Only used when StorageType is "s3".
	S3Storage S3StorageConfig `mapstructure:"s3_storage"`

	// Tus contains resumable upload protocol settings.
	Tus TusConfig `mapstructure:"tus"`

	// API contains management API settings.
	API APIConfig `mapstructure:"api"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	// Default: "0.0.0.0"
	Host string `mapstructure:"host" validate:"required"`

	// Port is the listen port.
	// Default: 8000
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// ReadHeaderTimeout is the maximum time to read request headers.
	// Default: 10s
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LocalStorageConfig configures the filesystem backend.
type LocalStorageConfig struct {
	// BasePath is the directory completed files are stored in.
	// Created on startup if missing.
	// Default: "static"
	BasePath string `mapstructure:"base_path"`
}

// S3StorageConfig configures the S3 backend.
//
// BucketName and both credentials are required when storage_type is
// "s3". The bucket must already exist.
type S3StorageConfig struct {
	// BucketName is the S3 bucket completed files are stored in.
	BucketName string `mapstructure:"bucket_name"`

	// EndpointURL points the client at an S3-compatible service
	// (MinIO, localstack). Empty uses the AWS default resolver.
	EndpointURL string `mapstructure:"endpoint_url"`

	// RegionName is the AWS region.
	// Default: "us-east-1"
	RegionName string `mapstructure:"region_name"`

	// AccessKeyID is the static access key.
	AccessKeyID string `mapstructure:"access_key_id"`

	// SecretAccessKey is the static secret key.
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// UsePathStyle forces path-style bucket addressing. Required by
	// most S3-compatible services.
	// Default: false
	UsePathStyle bool `mapstructure:"use_path_style"`
}

// TusConfig contains resumable upload protocol settings.
type TusConfig struct {
	// MaxSize is the maximum accepted upload size.
	// Supports human-readable formats: "1GiB", "512MB", or plain bytes.
	// Default: 1GiB
	MaxSize bytesize.ByteSize `mapstructure:"max_size" validate:"required,min=1"`

	// ExpirationPeriod is how long an unfinished upload is retained.
	// Accepts duration strings ("24h", "30m") or plain integer seconds.
	// Default: 24h
	ExpirationPeriod time.Duration `mapstructure:"expiration_period" validate:"required,gt=0"`

	// FilesDir is the scratch directory for in-progress uploads.
	// Created on startup if missing.
	// Default: "content"
	FilesDir string `mapstructure:"files_dir" validate:"required"`

	// Prefix is the URL path segment the upload endpoint is mounted
	// under, without slashes.
	// Default: "files"
	Prefix string `mapstructure:"prefix" validate:"required"`
}

// APIConfig contains management API settings.
type APIConfig struct {
	// Prefix is the URL prefix the management API is mounted under.
	// Default: "/api"
	Prefix string `mapstructure:"prefix" validate:"required,startswith=/"`

	// CORSOrigins is the list of allowed CORS origins.
	// Default: ["*"]
	CORSOrigins []string `mapstructure:"cors_origins"`

	// CORSHeaders is the list of allowed CORS request headers.
	// Default: ["*"]
	CORSHeaders []string `mapstructure:"cors_headers"`

	// AuthToken protects mutating and upload endpoints with bearer
	// token authentication. Empty disables authentication.
	// Default: "" (open)
	AuthToken string `mapstructure:"auth_token"`
}

// MetricsConfig configures Prometheus metrics.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the /metrics
	// endpoint are enabled.
	// Default: true
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, WARNING, ERROR, CRITICAL
	// (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN WARNING ERROR CRITICAL debug info warn warning error critical"`

	// Format specifies the log output format.
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written.
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PUT_*)
//  2. Configuration file
//  3. Default values
//
// An empty configPath uses the default location. A missing file is not
// an error; the defaults are returned instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	// If no config file was found, use defaults
	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly
// instructions if not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  putd init\n\n"+
				"Or specify a custom config file:\n"+
				"  putd <command> --config /path/to/config.toml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  putd init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// setupViper configures viper with environment variables and config file
// settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the PUT_ prefix with underscores.
	// Example: PUT_LOGGING_LEVEL=DEBUG, PUT_S3_STORAGE_BUCKET_NAME=drive
	v.SetEnvPrefix("PUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true must be defaulted here; after
	// unmarshaling there is no way to tell an explicit false from an
	// absent key.
	v.SetDefault("metrics.enabled", true)

	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/put/config.toml
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file
// was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable, defaults are used
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		// Also check for os.PathError when an explicit config file
		// does not exist
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts
// strings and integers to bytesize.ByteSize. This enables config files
// to use human-readable sizes like "1GiB", "500Mi", "100MB", or plain
// byte counts.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts
// strings and integers to time.Duration. Strings use Go duration syntax
// ("30s", "24h"); plain integers are seconds, matching how
// expiration_period has historically been written in config files.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to
// the current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "put")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "put")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.toml")
}

// DefaultConfigExists checks if a config file exists at the default
// location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
