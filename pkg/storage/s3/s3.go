// Package s3 implements file storage backed by Amazon S3 or any
// S3-compatible service (MinIO, Ceph RGW, LocalStack).
//
// Object layout:
//   - The object key is the file uid (no prefix nesting).
//   - Descriptor metadata is carried as S3 user metadata, so the bucket is
//     self-describing and a descriptor can be rebuilt from a HeadObject.
//   - The display name round-trips through the "filename" metadata key.
//
// S3 user-metadata keys travel as HTTP headers (x-amz-meta-<key>), so keys
// are restricted to ASCII letters, digits, '-', '_' and '.'; Upload rejects
// anything else rather than letting the request fail at the wire.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// defaultSearchPageCeiling bounds how many list pages Search will walk
// before refusing. Each page holds up to 1000 keys.
const defaultSearchPageCeiling = 10

// Config holds configuration for the S3 storage backend.
type Config struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// SearchPageCeiling is the maximum number of list pages Search will
	// scan before refusing the query. Default: 10 (10k objects).
	SearchPageCeiling int

	// Metrics is an optional metrics collector.
	Metrics storage.Metrics
}

// Store is an S3-backed implementation of storage.Storage.
//
// All operations are safe for concurrent use. Concurrent writes to the
// same uid are last-write-wins, which is acceptable because uids are
// generated fresh for every upload.
type Store struct {
	client            *s3.Client
	bucket            string
	searchPageCeiling int
	metrics           storage.Metrics
}

// NewClientFromConfig creates an S3 client from flat configuration values.
// An empty endpoint uses the AWS default resolver; a non-empty endpoint
// points the client at an S3-compatible service.
func NewClientFromConfig(
	ctx context.Context,
	endpoint,
	region,
	accessKeyID,
	secretAccessKey string,
	usePathStyle bool,
) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token (empty for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = usePathStyle
	})

	return client, nil
}

// New creates a new S3-backed store and verifies bucket access with a
// HeadBucket probe. The bucket must already exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, storage.NewInvalidArgumentError("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, storage.NewInvalidArgumentError("bucket name is required")
	}

	ceiling := cfg.SearchPageCeiling
	if ceiling <= 0 {
		ceiling = defaultSearchPageCeiling
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, storage.NewTransportError("head_bucket", cfg.Bucket, err)
	}

	return &Store{
		client:            cfg.Client,
		bucket:            cfg.Bucket,
		searchPageCeiling: ceiling,
		metrics:           cfg.Metrics,
	}, nil
}

// Type returns the backend identifier.
func (s *Store) Type() string { return "s3" }

// isNotFoundError returns true if the error indicates the object or bucket
// does not exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "NoSuchKey" || code == "NotFound" || code == "404" {
			return true
		}
	}

	return false
}

// wrapErr maps an SDK error to the storage error taxonomy. Context
// cancellation passes through untouched.
func wrapErr(op, uid string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isNotFoundError(err) {
		return storage.NewNotFoundError(uid)
	}
	return storage.NewTransportError(op, uid, err)
}

// validMetadataKey reports whether key survives the trip through an
// x-amz-meta-* header unmangled.
func validMetadataKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

func validateMetadata(md map[string]string) error {
	for key := range md {
		if !validMetadataKey(key) {
			return storage.NewInvalidArgumentError(
				fmt.Sprintf("metadata key %q is not valid for S3 user metadata", key))
		}
	}
	return nil
}

// objectMetadata builds the user-metadata map stored alongside the object.
// The display name is folded into the "filename" key so it survives a
// round-trip through HeadObject.
func objectMetadata(f storage.File) map[string]string {
	md := make(map[string]string, len(f.Metadata)+1)
	for k, v := range f.Metadata {
		md[strings.ToLower(k)] = v
	}
	if f.Name != "" {
		md[storage.MetaFilename] = f.Name
	}
	return md
}

// fileFromObject rebuilds a descriptor from object attributes. S3
// lowercases user-metadata keys on the way back, which is why
// objectMetadata lowercases them on the way in.
func fileFromObject(uid string, size int64, lastModified *time.Time, md map[string]string) storage.File {
	f := storage.File{
		UID:      uid,
		Size:     size,
		Metadata: md,
	}
	if lastModified != nil {
		f.CreatedAt = lastModified.Unix()
	}
	if name, ok := md[storage.MetaFilename]; ok && name != "" {
		f.Name = name
	} else {
		f.Name = uid
	}
	return f
}

// Ensure Store implements storage.Storage.
var _ storage.Storage = (*Store)(nil)
