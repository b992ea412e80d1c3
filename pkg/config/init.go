package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the commented configuration file written by
// 'putd init'. The values shown are the compiled-in defaults; the init
// tests verify it stays in sync with GetDefaultConfig.
const defaultConfigTemplate = `# PUT Configuration File
#
# Generated by 'putd init'. All values below are the defaults. Every
# option can also be set through a PUT_ environment variable, for
# example PUT_SERVER_PORT=9000 or PUT_S3_STORAGE_BUCKET_NAME=drive.

app_name = "put"
debug = false

# Backend for completed uploads: "local" or "s3".
storage_type = "local"

[server]
host = "0.0.0.0"
port = 8000
read_header_timeout = "10s"
shutdown_timeout = "10s"

[local_storage]
base_path = "static"

# Required when storage_type is "s3". The bucket must already exist.
[s3_storage]
bucket_name = ""
endpoint_url = ""
region_name = "us-east-1"
access_key_id = ""
secret_access_key = ""
use_path_style = false

[tus]
max_size = "1GiB"
expiration_period = "24h"
files_dir = "content"
prefix = "files"

[api]
prefix = "/api"
cors_origins = ["*"]
cors_headers = ["*"]
# Set a token to require Authorization: Bearer <token> on uploads and
# mutating endpoints. Empty leaves the server open.
auth_token = ""

[metrics]
enabled = true

[logging]
level = "INFO"
format = "text"
output = "stdout"
`

// InitConfig writes the default configuration file to the default
// location and returns its path. An existing file is only overwritten
// when force is true.
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()
	if err := InitConfigToPath(configPath, force); err != nil {
		return "", err
	}
	return configPath, nil
}

// InitConfigToPath writes the default configuration file to the given
// path. An existing file is only overwritten when force is true.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s\n\n"+
			"Use --force to overwrite", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600 because the file may hold S3 credentials or an auth token
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
