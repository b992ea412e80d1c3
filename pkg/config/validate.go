package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tag validation is
// stateless, so a single instance is safe for concurrent use.
var validate = validator.New()

// Validate checks the configuration for errors.
//
// Struct tags cover field-level rules (required, oneof, ranges).
// Conditional rules that depend on other fields, such as the S3
// credentials being required only for the S3 backend, are checked
// explicitly afterwards.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.StorageType == StorageTypeS3 {
		if err := validateS3Storage(&cfg.S3Storage); err != nil {
			return err
		}
	}

	return nil
}

// validateS3Storage checks the fields the S3 backend cannot run without.
func validateS3Storage(cfg *S3StorageConfig) error {
	if cfg.BucketName == "" {
		return fmt.Errorf("s3_storage: bucket_name is required when storage_type is %q", StorageTypeS3)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("s3_storage: access_key_id is required when storage_type is %q", StorageTypeS3)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("s3_storage: secret_access_key is required when storage_type is %q", StorageTypeS3)
	}
	return nil
}
