package config

import (
	"context"
	"fmt"

	"github.com/jasonlovesdoggo/put/pkg/storage"
	"github.com/jasonlovesdoggo/put/pkg/storage/local"
	"github.com/jasonlovesdoggo/put/pkg/storage/s3"
)

// NewStorage builds the completed-file backend selected by the
// configuration.
//
// The local backend creates its base directory on first use. The S3
// backend dials the bucket immediately so a bad endpoint or missing
// bucket fails at startup instead of on the first completed upload.
func NewStorage(ctx context.Context, cfg *Config, m storage.Metrics) (storage.Storage, error) {
	switch cfg.StorageType {
	case StorageTypeLocal:
		return local.New(local.Config{
			BasePath: cfg.LocalStorage.BasePath,
			Metrics:  m,
		})

	case StorageTypeS3:
		client, err := s3.NewClientFromConfig(
			ctx,
			cfg.S3Storage.EndpointURL,
			cfg.S3Storage.RegionName,
			cfg.S3Storage.AccessKeyID,
			cfg.S3Storage.SecretAccessKey,
			cfg.S3Storage.UsePathStyle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build S3 client: %w", err)
		}

		return s3.New(ctx, s3.Config{
			Client:  client,
			Bucket:  cfg.S3Storage.BucketName,
			Metrics: m,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %q", cfg.StorageType)
	}
}
