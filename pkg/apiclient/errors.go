package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is an error response from the management API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsAuthError returns true if the server rejected the bearer token.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if the requested file does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// decodeAPIError builds an APIError from an error response body. Bodies
// that are not the usual JSON shape are carried verbatim.
func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if json.Unmarshal(body, apiErr) == nil && apiErr.Message != "" {
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// UploadError is an error response from the upload protocol endpoints.
type UploadError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`

	// Offset is the authoritative upload offset, present on conflict
	// responses so the client can resynchronize without a HEAD.
	Offset *int64 `json:"offset,omitempty"`
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upload request failed with status %d", e.StatusCode)
}

// IsConflict returns true if the server rejected the request offset.
func (e *UploadError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsTooLarge returns true if the upload exceeded the server's size cap.
func (e *UploadError) IsTooLarge() bool {
	return e.StatusCode == http.StatusRequestEntityTooLarge
}

// decodeUploadError builds an UploadError from a protocol error
// response.
func decodeUploadError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	uerr := &UploadError{StatusCode: resp.StatusCode}
	if json.Unmarshal(body, uerr) == nil && uerr.Message != "" {
		return uerr
	}
	uerr.Code = ""
	uerr.Message = strings.TrimSpace(string(body))
	return uerr
}
