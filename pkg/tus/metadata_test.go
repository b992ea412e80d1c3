package tus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{
			name:   "empty header",
			header: "",
			want:   nil,
		},
		{
			name:   "whitespace only",
			header: "   ",
			want:   nil,
		},
		{
			name:   "single pair",
			header: "filename dGVzdC50eHQ=",
			want:   map[string]string{"filename": "test.txt"},
		},
		{
			name:   "multiple pairs",
			header: "filename dGVzdC50eHQ=,mime_type dGV4dC9wbGFpbg==",
			want:   map[string]string{"filename": "test.txt", "mime_type": "text/plain"},
		},
		{
			name:   "bare key",
			header: "is_confidential",
			want:   map[string]string{"is_confidential": ""},
		},
		{
			name:   "bare key among pairs",
			header: "filename dGVzdC50eHQ=,is_confidential",
			want:   map[string]string{"filename": "test.txt", "is_confidential": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMetadataInvalid(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "bad base64", header: "filename not-base64!"},
		{name: "too many fields", header: "filename dGVzdA== extra"},
		{name: "empty entry", header: "filename dGVzdA==,,other dGVzdA=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(tt.header)
			assert.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}

func TestSerializeMetadata(t *testing.T) {
	assert.Equal(t, "", SerializeMetadata(nil))
	assert.Equal(t, "", SerializeMetadata(map[string]string{}))

	got := SerializeMetadata(map[string]string{"filename": "test.txt"})
	assert.Equal(t, "filename dGVzdC50eHQ=", got)

	// Keys are emitted in sorted order.
	got = SerializeMetadata(map[string]string{
		"mime_type": "text/plain",
		"filename":  "test.txt",
	})
	assert.Equal(t, "filename dGVzdC50eHQ=,mime_type dGV4dC9wbGFpbg==", got)

	// Empty values serialize as a bare key.
	got = SerializeMetadata(map[string]string{"is_confidential": ""})
	assert.Equal(t, "is_confidential", got)
}

func TestMetadataRoundTrip(t *testing.T) {
	md := map[string]string{
		"filename":  "report final (2).pdf",
		"mime_type": "application/pdf",
		"owner":     "alice",
		"empty":     "",
	}

	parsed, err := ParseMetadata(SerializeMetadata(md))
	require.NoError(t, err)
	assert.Equal(t, md, parsed)
}
