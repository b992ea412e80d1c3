package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/jasonlovesdoggo/put/pkg/tus"
)

// DefaultChunkSize is the PATCH body size used when UploadOptions does
// not choose one.
const DefaultChunkSize int64 = 4 << 20

// patchContentType is the media type the protocol requires on PATCH
// bodies.
const patchContentType = "application/offset+octet-stream"

// UploadOptions controls a resumable upload.
type UploadOptions struct {
	// Metadata is attached to the upload at creation. The filename and
	// mime_type keys drive the stored file's name and media type.
	Metadata map[string]string

	// ChunkSize is the number of bytes sent per PATCH request.
	ChunkSize int64

	// OnProgress, when set, is called after every persisted chunk with
	// the bytes accepted so far and the total size.
	OnProgress func(sent, total int64)
}

// UploadFile uploads a local file and returns the uid assigned by the
// server. The filename and mime_type metadata default to the file's
// basename and its extension-derived media type.
func (c *Client) UploadFile(filePath string, opts UploadOptions) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", filePath, err)
	}

	md := make(map[string]string, len(opts.Metadata)+2)
	for k, v := range opts.Metadata {
		md[k] = v
	}
	if md["filename"] == "" {
		md["filename"] = filepath.Base(filePath)
	}
	if md["mime_type"] == "" {
		if mt := mime.TypeByExtension(filepath.Ext(filePath)); mt != "" {
			md["mime_type"] = mt
		}
	}
	opts.Metadata = md

	return c.Upload(f, info.Size(), opts)
}

// Upload streams size bytes from r through the resumable upload
// protocol: one creation POST, then PATCH requests of ChunkSize bytes
// until the server confirms the final offset. Returns the uid assigned
// by the server.
//
// A zero-size upload still sends one empty PATCH; that is the request
// that completes it.
func (c *Client) Upload(r io.Reader, size int64, opts UploadOptions) (string, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	uploadURL, uid, err := c.createUpload(size, opts.Metadata)
	if err != nil {
		return "", err
	}

	buf := make([]byte, opts.ChunkSize)
	var offset int64
	for {
		chunk := size - offset
		if chunk > opts.ChunkSize {
			chunk = opts.ChunkSize
		}

		n, err := io.ReadFull(r, buf[:chunk])
		if err != nil && n == 0 && chunk > 0 {
			return uid, fmt.Errorf("failed to read chunk at offset %d: %w", offset, err)
		}

		offset, err = c.patchChunk(uploadURL, offset, buf[:n])
		if err != nil {
			return uid, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(offset, size)
		}

		if offset >= size {
			return uid, nil
		}
	}
}

// createUpload performs the creation POST and returns the upload URL
// from the Location header together with the uid it ends in.
func (c *Client) createUpload(size int64, md map[string]string) (string, string, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+c.uploadPrefix, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Tus-Resumable", tus.Version)
	req.Header.Set("Upload-Length", strconv.FormatInt(size, 10))
	if header := tus.SerializeMetadata(md); header != "" {
		req.Header.Set("Upload-Metadata", header)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", "", decodeUploadError(resp)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", "", fmt.Errorf("server did not return an upload location")
	}

	return c.resolveLocation(location)
}

// resolveLocation absolutizes a Location header against the base URL
// and extracts the trailing uid.
func (c *Client) resolveLocation(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid upload location %q: %w", location, err)
	}
	if !u.IsAbs() {
		base, err := url.Parse(c.baseURL)
		if err != nil {
			return "", "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
		}
		u = base.ResolveReference(u)
	}
	return u.String(), path.Base(u.Path), nil
}

// patchChunk sends one PATCH and returns the offset the server settled
// on.
func (c *Client) patchChunk(uploadURL string, offset int64, chunk []byte) (int64, error) {
	req, err := http.NewRequest(http.MethodPatch, uploadURL, bytes.NewReader(chunk))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Tus-Resumable", tus.Version)
	req.Header.Set("Content-Type", patchContentType)
	req.Header.Set("Upload-Offset", strconv.FormatInt(offset, 10))
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return 0, decodeUploadError(resp)
	}

	newOffset, err := strconv.ParseInt(resp.Header.Get("Upload-Offset"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("server returned no usable Upload-Offset: %w", err)
	}
	return newOffset, nil
}
