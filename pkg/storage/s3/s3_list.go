package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// List enumerates stored objects with the ListObjectsV2 paginator. The
// prefix filter is applied server-side against object keys (uids). S3 only
// returns keys in lexical order, so sorting happens client-side.
//
// Each listed key costs one extra HeadObject to recover the user metadata
// that carries the display name. That is acceptable at management-API
// scale; bulk exports should read the bucket directly.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) (files []storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "list", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	files, err = s.collect(ctx, opts.Prefix, 0, func(storage.File) bool { return true })
	if err != nil {
		return nil, err
	}

	storage.SortFiles(files, opts.SortBy, opts.SortOrder)
	return storage.Window(files, opts.Offset, opts.Limit), nil
}

// Search lists every object, hydrates its descriptor, and filters in
// memory. S3 has no server-side search, so the scan is bounded by the
// configured page ceiling; broader queries are refused rather than walking
// an arbitrarily large bucket.
func (s *Store) Search(ctx context.Context, opts storage.SearchOptions) (files []storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "search", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	files, err = s.collect(ctx, "", s.searchPageCeiling, opts.Matches)
	if err != nil {
		return nil, err
	}

	storage.SortFiles(files, opts.SortBy, opts.SortOrder)
	return storage.Window(files, opts.Offset, opts.Limit), nil
}

// collect pages through the bucket, hydrating each key and keeping the
// descriptors that pass the filter. maxPages <= 0 means unbounded.
func (s *Store) collect(ctx context.Context, prefix string, maxPages int, keep func(storage.File) bool) ([]storage.File, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)

	var files []storage.File
	pages := 0
	for paginator.HasMorePages() {
		if maxPages > 0 && pages >= maxPages {
			return nil, storage.NewInvalidArgumentError(fmt.Sprintf(
				"search aborted after %d pages; narrow the query or use list", pages))
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapErr("list_objects", prefix, err)
		}
		pages++

		for _, obj := range page.Contents {
			f, err := s.hydrate(ctx, obj)
			if err != nil {
				// Deleted between list and head; skip it.
				if storage.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			if keep(f) {
				files = append(files, f)
			}
		}
	}

	return files, nil
}

// hydrate turns a list entry into a full descriptor. The list entry knows
// key, size and mtime; the user metadata needs a HeadObject.
func (s *Store) hydrate(ctx context.Context, obj types.Object) (storage.File, error) {
	uid := aws.ToString(obj.Key)

	f, err := s.head(ctx, uid)
	if err != nil {
		return storage.File{}, err
	}

	// Prefer the listing's size and mtime: on eventual-consistency stores
	// the head can race a concurrent overwrite.
	if obj.Size != nil {
		f.Size = *obj.Size
	}
	if obj.LastModified != nil {
		f.CreatedAt = obj.LastModified.Unix()
	}

	return f, nil
}
