package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonlovesdoggo/put/pkg/api/handlers"
	"github.com/jasonlovesdoggo/put/pkg/config"
	"github.com/jasonlovesdoggo/put/pkg/ingest"
	"github.com/jasonlovesdoggo/put/pkg/storage/local"
	"github.com/jasonlovesdoggo/put/pkg/tus"
	"github.com/jasonlovesdoggo/put/pkg/tus/scratch"
)

// newTestServer assembles the full HTTP surface the way the daemon does:
// scratch store, local backend, completion pipeline, upload handler, and
// the router on top.
func newTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *config.Config) {
	t.Helper()

	cfg := config.GetDefaultConfig()
	cfg.Tus.FilesDir = t.TempDir()
	cfg.LocalStorage.BasePath = t.TempDir()
	cfg.Metrics.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	store, err := scratch.New(cfg.Tus.FilesDir)
	require.NoError(t, err)

	backend, err := local.New(local.Config{BasePath: cfg.LocalStorage.BasePath})
	require.NoError(t, err)

	uploads := tus.NewHandler(store, ingest.New(backend, store), tus.Config{
		Prefix:           cfg.Tus.Prefix,
		MaxSize:          cfg.Tus.MaxSize.Int64(),
		ExpirationPeriod: cfg.Tus.ExpirationPeriod,
	}, nil)

	srv := httptest.NewServer(NewRouter(cfg, uploads, backend))
	t.Cleanup(srv.Close)
	return srv, cfg
}

func TestRouterHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouterSignature(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/signature", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sig handlers.SignatureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sig))
	assert.Equal(t, handlers.SignatureVerifier, sig.Verifier)
	assert.Equal(t, handlers.Version, sig.Version)
}

func TestRouterUploadRoutesMounted(t *testing.T) {
	srv, cfg := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/"+cfg.Tus.Prefix, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, tus.Version, resp.Header.Get("Tus-Resumable"))
}

func TestRouterManagementAuth(t *testing.T) {
	srv, cfg := newTestServer(t, func(cfg *config.Config) {
		cfg.API.AuthToken = "secret"
	})

	// Without the token the management API refuses.
	resp, err := http.Get(srv.URL + cfg.API.Prefix + "/list")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+cfg.API.Prefix+"/list", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// System endpoints stay open regardless.
	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterStaticFiles(t *testing.T) {
	srv, cfg := newTestServer(t, nil)

	err := os.WriteFile(filepath.Join(cfg.Tus.FilesDir, "payload"), []byte("partial bytes"), 0644)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/file/payload")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Directory paths never render a listing.
	resp, err = http.Get(srv.URL + "/file/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterMetricsDisabled(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
