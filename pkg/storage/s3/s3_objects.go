package s3

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// Upload stores the stream under f.UID with the descriptor metadata as S3
// user metadata. ContentLength is taken from the descriptor, so S3 itself
// verifies the stream delivered exactly f.Size bytes.
func (s *Store) Upload(ctx context.Context, f storage.File, r io.Reader) (err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "upload", time.Since(start), err)
		if err == nil {
			storage.RecordBytes(s.metrics, s.Type(), "write", f.Size)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if f.UID == "" {
		return storage.NewInvalidArgumentError("uid is required")
	}
	if err = validateMetadata(f.Metadata); err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(f.UID),
		Body:          r,
		ContentLength: aws.Int64(f.Size),
		ContentType:   aws.String(f.MimeType()),
		Metadata:      objectMetadata(f),
	})
	if err != nil {
		return wrapErr("put_object", f.UID, err)
	}

	return nil
}

// Download opens a readable stream over the stored object. The caller owns
// the returned body and must close it.
func (s *Store) Download(ctx context.Context, uid string) (f storage.File, rc io.ReadCloser, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "download", time.Since(start), err)
		if err == nil {
			storage.RecordBytes(s.metrics, s.Type(), "read", f.Size)
		}
	}()

	if err = ctx.Err(); err != nil {
		return storage.File{}, nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(uid),
	})
	if err != nil {
		return storage.File{}, nil, wrapErr("get_object", uid, err)
	}

	f = fileFromObject(uid, aws.ToInt64(out.ContentLength), out.LastModified, out.Metadata)
	return f, out.Body, nil
}

// Get rebuilds the descriptor from a HeadObject, without fetching the body.
func (s *Store) Get(ctx context.Context, uid string) (f storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "get", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return storage.File{}, err
	}

	return s.head(ctx, uid)
}

func (s *Store) head(ctx context.Context, uid string) (storage.File, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(uid),
	})
	if err != nil {
		return storage.File{}, wrapErr("head_object", uid, err)
	}

	return fileFromObject(uid, aws.ToInt64(out.ContentLength), out.LastModified, out.Metadata), nil
}

// Delete removes the object. S3's DeleteObject succeeds on missing keys,
// so existence is probed first to honor the not-found contract.
func (s *Store) Delete(ctx context.Context, uid string) (err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "delete", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if _, err = s.head(ctx, uid); err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(uid),
	})
	if err != nil {
		return wrapErr("delete_object", uid, err)
	}

	return nil
}

// Rename updates the display name by copying the object onto itself with
// replaced metadata. S3 has no in-place metadata update, so CopyObject with
// MetadataDirective REPLACE is the supported way to rewrite user metadata.
func (s *Store) Rename(ctx context.Context, uid, newName string) (f storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "rename", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return storage.File{}, err
	}

	if newName == "" {
		return storage.File{}, storage.NewInvalidArgumentError("file name is required")
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(uid),
	})
	if err != nil {
		return storage.File{}, wrapErr("head_object", uid, err)
	}

	md := make(map[string]string, len(out.Metadata)+1)
	for k, v := range out.Metadata {
		md[k] = v
	}
	md[storage.MetaFilename] = newName

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(uid),
		CopySource:        aws.String(url.PathEscape(s.bucket + "/" + uid)),
		Metadata:          md,
		MetadataDirective: types.MetadataDirectiveReplace,
		ContentType:       out.ContentType,
	})
	if err != nil {
		return storage.File{}, wrapErr("copy_object", uid, err)
	}

	return fileFromObject(uid, aws.ToInt64(out.ContentLength), out.LastModified, md), nil
}
