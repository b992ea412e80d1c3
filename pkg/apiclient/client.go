// Package apiclient provides the REST and resumable-upload client the
// put CLI is built on.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Stock mount points of a freshly initialized server.
const (
	defaultAPIPrefix    = "/api"
	defaultUploadPrefix = "/files"
)

// Client talks to one server instance.
type Client struct {
	baseURL      string
	apiPrefix    string
	uploadPrefix string
	token        string

	httpClient   *http.Client
	streamClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiPrefix:    defaultAPIPrefix,
		uploadPrefix: defaultUploadPrefix,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Blob transfers run as long as bytes keep flowing, so they get
		// a client without an overall deadline.
		streamClient: &http.Client{},
	}
}

// WithToken returns a copy of the client authenticating with the given
// bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// SetToken sets the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetPrefixes overrides the mount points of the management API and the
// upload protocol for servers running a non-stock configuration.
func (c *Client) SetPrefixes(api, upload string) {
	c.apiPrefix = "/" + strings.Trim(api, "/")
	c.uploadPrefix = "/" + strings.Trim(upload, "/")
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs an HTTP request and decodes the response.
func (c *Client) do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// authorize attaches the bearer token, if any.
func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// get performs a GET request.
func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

// put performs a PUT request.
func (c *Client) put(path string, body, result any) error {
	return c.do(http.MethodPut, path, body, result)
}

// delete performs a DELETE request.
func (c *Client) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}
