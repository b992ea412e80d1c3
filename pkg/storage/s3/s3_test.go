package s3

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonlovesdoggo/put/pkg/storage"
)

func TestNewRequiresClientAndBucket(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Bucket: "uploads"})
	assert.True(t, storage.IsInvalidArgument(err))

	_, err = New(ctx, Config{Client: nil, Bucket: ""})
	assert.True(t, storage.IsInvalidArgument(err))
}

func TestValidMetadataKey(t *testing.T) {
	valid := []string{"filename", "mime_type", "x-owner", "v1.2", "A9"}
	for _, key := range valid {
		assert.True(t, validMetadataKey(key), "key %q", key)
	}

	invalid := []string{"", "s p a c e", "naïve", "key:colon", "tab\tkey", "emoji☃"}
	for _, key := range invalid {
		assert.False(t, validMetadataKey(key), "key %q", key)
	}
}

func TestValidateMetadata(t *testing.T) {
	err := validateMetadata(map[string]string{"filename": "a.txt", "owner": "alice"})
	require.NoError(t, err)

	err = validateMetadata(map[string]string{"bad key": "x"})
	assert.True(t, storage.IsInvalidArgument(err))
}

func TestObjectMetadataFoldsNameAndLowercasesKeys(t *testing.T) {
	f := storage.File{
		UID:  "u1",
		Name: "report.pdf",
		Metadata: map[string]string{
			"Owner":     "alice",
			"mime_type": "application/pdf",
		},
	}

	md := objectMetadata(f)
	assert.Equal(t, "alice", md["owner"])
	assert.Equal(t, "application/pdf", md["mime_type"])
	assert.Equal(t, "report.pdf", md[storage.MetaFilename])
}

func TestObjectMetadataKeepsExplicitFilename(t *testing.T) {
	f := storage.File{
		UID:      "u1",
		Name:     "renamed.pdf",
		Metadata: map[string]string{storage.MetaFilename: "original.pdf"},
	}

	// The display name wins over the stale metadata entry.
	md := objectMetadata(f)
	assert.Equal(t, "renamed.pdf", md[storage.MetaFilename])
}

func TestFileFromObject(t *testing.T) {
	mtime := time.Unix(1700000000, 0)

	f := fileFromObject("u1", 42, &mtime, map[string]string{
		storage.MetaFilename: "notes.txt",
		storage.MetaOwner:    "bob",
	})
	assert.Equal(t, "u1", f.UID)
	assert.Equal(t, "notes.txt", f.Name)
	assert.Equal(t, int64(42), f.Size)
	assert.Equal(t, int64(1700000000), f.CreatedAt)
	assert.Equal(t, "bob", f.Metadata[storage.MetaOwner])

	// Without a filename entry the uid doubles as the display name.
	f = fileFromObject("u2", 0, nil, nil)
	assert.Equal(t, "u2", f.Name)
	assert.Zero(t, f.CreatedAt)
}

func TestWrapErr(t *testing.T) {
	err := wrapErr("get_object", "u1", &types.NoSuchKey{})
	assert.True(t, storage.IsNotFound(err))

	err = wrapErr("head_object", "u1", &smithy.GenericAPIError{Code: "NotFound"})
	assert.True(t, storage.IsNotFound(err))

	err = wrapErr("get_object", "u1", &smithy.GenericAPIError{Code: "SlowDown"})
	assert.False(t, storage.IsNotFound(err))
	var serr *storage.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.CodeTransport, serr.Code)

	assert.Equal(t, context.Canceled, wrapErr("get_object", "u1", context.Canceled))
}
