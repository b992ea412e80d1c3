// Package api assembles the HTTP surface of the upload server: the
// resumable upload endpoints, the management API, and the system
// endpoints (health, signature, metrics, static files).
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/api/handlers"
	"github.com/jasonlovesdoggo/put/pkg/api/middleware"
	"github.com/jasonlovesdoggo/put/pkg/config"
	"github.com/jasonlovesdoggo/put/pkg/metrics"
	"github.com/jasonlovesdoggo/put/pkg/storage"
	"github.com/jasonlovesdoggo/put/pkg/tus"
)

// managementTimeout bounds management API requests. Upload routes are
// exempt: a PATCH legitimately takes as long as the payload transfer.
const managementTimeout = 30 * time.Second

// NewRouter creates and configures the chi router with all middleware
// and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - CORS from the api.cors_* options
//
// Routes:
//   - /{tus.prefix}/... - resumable upload protocol
//   - {api.prefix}/... - management API (bearer auth when configured)
//   - GET /health - liveness probe
//   - PUT /signature - instance verification for the CLI
//   - GET /metrics - Prometheus exposition (when enabled)
//   - GET /file/* - static access to the scratch directory
func NewRouter(cfg *config.Config, uploads *tus.Handler, backend storage.Storage) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg.API))

	// System endpoints - unauthenticated
	systemHandler := handlers.NewSystemHandler(cfg.AppName)
	r.Get("/health", systemHandler.Health)
	r.Put("/signature", systemHandler.Signature)

	if cfg.Metrics.Enabled {
		if mh := metrics.Handler(); mh != nil {
			r.Method(http.MethodGet, "/metrics", mh)
		}
	}

	// Raw scratch directory access, kept for compatibility with clients
	// that fetch in-progress payloads directly
	r.Get("/file/*", staticFiles("/file/", cfg.Tus.FilesDir))

	// Resumable upload protocol
	r.Mount("/"+cfg.Tus.Prefix, uploads.Routes())

	// Management API
	filesHandler := handlers.NewFilesHandler(backend)
	r.Route(cfg.API.Prefix, func(r chi.Router) {
		r.Use(chimiddleware.Timeout(managementTimeout))
		r.Use(middleware.RequireToken(cfg.API.AuthToken))

		r.Get("/list", filesHandler.List)
		r.Get("/search", filesHandler.Search)
		r.Get("/{uid}", filesHandler.Get)
		r.Put("/{uid}", filesHandler.Rename)
		r.Delete("/{uid}", filesHandler.Delete)
	})

	return r
}

// corsMiddleware builds the CORS layer from the api.cors_* options. The
// upload protocol headers are exposed so browser clients can resume.
func corsMiddleware(cfg config.APIConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: cfg.CORSHeaders,
		ExposedHeaders: []string{
			"Location",
			"Tus-Resumable",
			"Tus-Version",
			"Tus-Extension",
			"Tus-Max-Size",
			"Upload-Offset",
			"Upload-Length",
			"Upload-Expires",
			"Upload-Metadata",
		},
	}).Handler
}

// staticFiles serves files under root without directory listings.
func staticFiles(prefix, root string) http.HandlerFunc {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(root)))

	return func(w http.ResponseWriter, r *http.Request) {
		// FileServer would render a listing for directory paths
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}
}

// requestLogger is a custom middleware that logs requests using the
// internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		logger.Debug("Request started",
			logger.KeyRequestID, requestID,
			logger.KeyMethod, r.Method,
			logger.KeyRoute, r.URL.Path,
			logger.KeyClientIP, r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("Request completed",
			logger.KeyRequestID, requestID,
			logger.KeyMethod, r.Method,
			logger.KeyRoute, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			logger.KeyBytesWritten, ww.BytesWritten(),
			logger.KeyDurationMs, time.Since(start).Milliseconds(),
		)
	})
}
