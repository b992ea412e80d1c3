// Package storage defines the backend contract completed uploads are
// ingested into, together with the typed errors and sort rules shared by
// its implementations.
//
// A backend owns a flat uid keyspace: every stored file is addressed by
// the 32-hex uid assigned when its upload was created. Implementations
// must be safe for concurrent use across distinct uids; concurrent writes
// to the same uid are not coordinated here.
package storage

import (
	"context"
	"io"
	"time"
)

// Metadata keys with conventional meaning. Clients are free to attach
// arbitrary keys; these are the ones the server itself interprets.
const (
	MetaFilename = "filename"
	MetaFiletype = "filetype"
	MetaMimeType = "mime_type"
	MetaCategory = "category"
	MetaOwner    = "owner"
)

// DefaultCategory is used when a file carries no category metadata.
const DefaultCategory = "unsorted"

// DefaultMimeType is used when a file carries no type metadata.
const DefaultMimeType = "application/octet-stream"

// File describes a stored file. It is the backend-resident record built
// from a completed upload's descriptor.
type File struct {
	// UID is the identifier of the upload that produced this file.
	UID string `json:"uid"`

	// Name is the display name (the uid when no filename metadata was
	// supplied at creation).
	Name string `json:"name"`

	// Size is the final byte length of the stored blob.
	Size int64 `json:"size"`

	// CreatedAt is the ingestion time in Unix seconds. It is assigned by
	// the server, never trusted from the client.
	CreatedAt int64 `json:"created_at"`

	// Expires is an optional expiry in Unix seconds.
	Expires *int64 `json:"expires"`

	// Metadata is the completed upload's metadata map.
	Metadata map[string]string `json:"metadata"`
}

// IsExpired reports whether the file has an expiry in the past.
func (f File) IsExpired() bool {
	return f.Expires != nil && *f.Expires < time.Now().Unix()
}

// MimeType returns the media type recorded in metadata, falling back to
// application/octet-stream.
func (f File) MimeType() string {
	if mt := f.Metadata[MetaMimeType]; mt != "" {
		return mt
	}
	if ft := f.Metadata[MetaFiletype]; ft != "" {
		return ft
	}
	return DefaultMimeType
}

// Category returns the organizational bucket recorded in metadata,
// falling back to "unsorted".
func (f File) Category() string {
	if c := f.Metadata[MetaCategory]; c != "" {
		return c
	}
	return DefaultCategory
}

// ListOptions controls enumeration of stored files.
//
// Limit <= 0 means no window is applied after sorting; callers that want
// a page pass an explicit positive limit.
type ListOptions struct {
	// Prefix filters to files whose uid or name starts with it.
	Prefix string

	Limit  int
	Offset int

	SortBy    SortBy
	SortOrder SortOrder
}

// SearchOptions controls filtered enumeration. All filters are optional
// and combine conjunctively.
type SearchOptions struct {
	// Query matches as a case-insensitive substring of uid or name.
	Query string

	// FileType matches as a case-insensitive name suffix (".pdf").
	FileType string

	// Owner matches the "owner" metadata value exactly.
	Owner string

	// CreatedAfter / CreatedBefore bound the ingestion time.
	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	Limit  int
	Offset int

	SortBy    SortBy
	SortOrder SortOrder
}

// Storage is the capability set a durable backend provides. Two variants
// ship with the server: the local filesystem tree and an S3-compatible
// bucket, selected at startup from configuration.
//
// Every operation returns a *StorageError; transport failures are never
// masked as not-found.
type Storage interface {
	// Upload persists the stream under file.UID, recording the file's
	// metadata, size, and media type. The stream carries the whole
	// payload once, from offset 0.
	Upload(ctx context.Context, file File, r io.Reader) error

	// Download opens a readable stream over the stored blob.
	Download(ctx context.Context, uid string) (File, io.ReadCloser, error)

	// Get fetches metadata only.
	Get(ctx context.Context, uid string) (File, error)

	// Delete removes the blob and its metadata.
	Delete(ctx context.Context, uid string) error

	// Rename changes the display name only and returns the updated
	// record. The uid and blob contents are untouched.
	Rename(ctx context.Context, uid, newName string) (File, error)

	// List enumerates stored files per opts.
	List(ctx context.Context, opts ListOptions) ([]File, error)

	// Search enumerates stored files matching the filters in opts.
	Search(ctx context.Context, opts SearchOptions) ([]File, error)

	// Type identifies the backend variant ("local", "s3") for logs.
	Type() string
}
