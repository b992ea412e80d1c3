package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidStorageType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.StorageType = "ftp"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid storage type")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "TRACE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_NegativePort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative port")
	}
}

func TestValidate_APIPrefixMustStartWithSlash(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Prefix = "api"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for api prefix without leading slash")
	}
}

func TestValidate_S3RequiresBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.StorageType = StorageTypeS3
	cfg.S3Storage.AccessKeyID = "key"
	cfg.S3Storage.SecretAccessKey = "secret"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for S3 without bucket")
	}
	if !strings.Contains(err.Error(), "bucket_name") {
		t.Errorf("Expected error about bucket_name, got: %v", err)
	}
}

func TestValidate_S3RequiresCredentials(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.StorageType = StorageTypeS3
	cfg.S3Storage.BucketName = "drive"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for S3 without credentials")
	}
	if !strings.Contains(err.Error(), "access_key_id") {
		t.Errorf("Expected error about access_key_id, got: %v", err)
	}
}

func TestValidate_S3Complete(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.StorageType = StorageTypeS3
	cfg.S3Storage.BucketName = "drive"
	cfg.S3Storage.AccessKeyID = "key"
	cfg.S3Storage.SecretAccessKey = "secret"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected complete S3 config to pass validation, got: %v", err)
	}
}

func TestValidate_LocalIgnoresS3Fields(t *testing.T) {
	// S3 settings are not validated when the local backend is selected,
	// so a half-filled [s3_storage] section is not an error.
	cfg := GetDefaultConfig()
	cfg.StorageType = StorageTypeLocal
	cfg.S3Storage.BucketName = "drive"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected local config to ignore S3 fields, got: %v", err)
	}
}

func TestValidate_ZeroMaxSize(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Tus.MaxSize = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for zero max_size")
	}
}
