package apiclient

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// File is a stored file's metadata as reported by the server.
type File struct {
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	Size      int64             `json:"size"`
	CreatedAt int64             `json:"created_at"`
	Expires   *int64            `json:"expires"`
	Metadata  map[string]string `json:"metadata"`
}

// ListOptions pages and sorts ListFiles. Zero values defer to the
// server defaults (a 10 item page, newest first).
type ListOptions struct {
	Prefix    string
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// query encodes the options as a URL query string.
func (o ListOptions) query() string {
	q := url.Values{}
	if o.Prefix != "" {
		q.Set("prefix", o.Prefix)
	}
	addPageQuery(q, o.Limit, o.Offset, o.SortBy, o.SortOrder)
	return encodeQuery(q)
}

// SearchOptions filters SearchFiles. All filters are optional and
// combine conjunctively; paging behaves as in ListOptions.
type SearchOptions struct {
	// Query matches as a substring of uid or name.
	Query string

	// FileType matches as a name suffix, e.g. ".pdf".
	FileType string

	// Owner matches the "owner" metadata value exactly.
	Owner string

	// CreatedAfter / CreatedBefore bound the ingestion time.
	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// query encodes the options as a URL query string.
func (o SearchOptions) query() string {
	q := url.Values{}
	if o.Query != "" {
		q.Set("query", o.Query)
	}
	if o.FileType != "" {
		q.Set("file_type", o.FileType)
	}
	if o.Owner != "" {
		q.Set("owner", o.Owner)
	}
	if o.CreatedAfter != nil {
		q.Set("created_after", o.CreatedAfter.UTC().Format(time.RFC3339))
	}
	if o.CreatedBefore != nil {
		q.Set("created_before", o.CreatedBefore.UTC().Format(time.RFC3339))
	}
	addPageQuery(q, o.Limit, o.Offset, o.SortBy, o.SortOrder)
	return encodeQuery(q)
}

func addPageQuery(q url.Values, limit, offset int, sortBy, sortOrder string) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	if sortOrder != "" {
		q.Set("sort_order", sortOrder)
	}
}

func encodeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListFiles returns a page of stored files.
func (c *Client) ListFiles(opts ListOptions) ([]File, error) {
	var files []File
	if err := c.get(c.apiPrefix+"/list"+opts.query(), &files); err != nil {
		return nil, err
	}
	return files, nil
}

// SearchFiles returns the stored files matching the filters.
func (c *Client) SearchFiles(opts SearchOptions) ([]File, error) {
	var files []File
	if err := c.get(c.apiPrefix+"/search"+opts.query(), &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetFile returns the metadata of a stored file.
func (c *Client) GetFile(uid string) (*File, error) {
	var file File
	if err := c.get(c.apiPrefix+"/"+uid+"?meta=true", &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DownloadFile opens a stream over a stored blob. The caller must close
// the returned reader.
func (c *Client) DownloadFile(uid string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+c.apiPrefix+"/"+uid, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	return resp.Body, nil
}

// renameRequest is the body of the rename endpoint.
type renameRequest struct {
	Name string `json:"name"`
}

// RenameFile changes the display name of a stored file and returns the
// updated metadata.
func (c *Client) RenameFile(uid, name string) (*File, error) {
	var file File
	if err := c.put(c.apiPrefix+"/"+uid, renameRequest{Name: name}, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile removes a stored file.
func (c *Client) DeleteFile(uid string) error {
	return c.delete(c.apiPrefix + "/" + uid)
}
