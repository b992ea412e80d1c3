package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client := New("http://localhost:8000")
	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8000", client.baseURL)
	assert.Equal(t, "/api", client.apiPrefix)
	assert.Equal(t, "/files", client.uploadPrefix)
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	client := New("http://localhost:8000/")
	assert.Equal(t, "http://localhost:8000", client.baseURL)
}

func TestWithToken(t *testing.T) {
	client := New("http://localhost:8000")
	tokenClient := client.WithToken("test-token")

	// Original client should not have token
	assert.Empty(t, client.token)

	// New client should have token
	assert.Equal(t, "test-token", tokenClient.token)
	assert.Equal(t, "http://localhost:8000", tokenClient.baseURL)
}

func TestSetToken(t *testing.T) {
	client := New("http://localhost:8000")
	client.SetToken("my-token")
	assert.Equal(t, "my-token", client.token)
}

func TestSetPrefixes(t *testing.T) {
	client := New("http://localhost:8000")
	client.SetPrefixes("mgmt/", "/uploads")
	assert.Equal(t, "/mgmt", client.apiPrefix)
	assert.Equal(t, "/uploads", client.uploadPrefix)
}

func TestDoWithSuccess(t *testing.T) {
	type Response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Response{Message: "success"})
	}))
	defer server.Close()

	client := New(server.URL)

	var resp Response
	err := client.get("/test", &resp)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Message)
}

func TestDoWithAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	err := client.get("/test", nil)
	require.NoError(t, err)
}

func TestDoWithAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid or missing bearer token"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.get("/test", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid or missing bearer token", apiErr.Message)
	assert.True(t, apiErr.IsAuthError())
	assert.False(t, apiErr.IsNotFound())
}

func TestDoWithNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 page not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.get("/test", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "404 page not found", apiErr.Message)
}

func TestSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/signature", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Signature{
			Version:            "1.0.1",
			Verifier:           "ArafOrzCatMan",
			CompatibleVersions: []string{"1.0.1"},
		})
	}))
	defer server.Close()

	sig, err := New(server.URL).Signature()
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", sig.Version)
	assert.True(t, sig.Valid())
}

func TestSignatureImpostor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Signature{Version: "1.0.1", Verifier: "NotTheRealThing"})
	}))
	defer server.Close()

	sig, err := New(server.URL).Signature()
	require.NoError(t, err)
	assert.False(t, sig.Valid())
}
