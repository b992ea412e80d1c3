package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// defaultPageLimit is the number of files returned when the client does
// not ask for a specific page size.
const defaultPageLimit = 10

// FilesHandler exposes the completed-file catalog over HTTP.
//
// Endpoints (mounted under the API prefix):
//   - GET /list - page through stored files
//   - GET /search - filtered search
//   - GET /{uid} - stream a blob, or its metadata with ?meta=true
//   - PUT /{uid} - rename
//   - DELETE /{uid} - delete
type FilesHandler struct {
	backend storage.Storage
}

// NewFilesHandler creates a new files handler on top of the given
// backend.
func NewFilesHandler(backend storage.Storage) *FilesHandler {
	return &FilesHandler{backend: backend}
}

// List handles GET /list.
//
// Query parameters: prefix, limit (default 10), offset, sort_by
// (created_at|size|name, default created_at), sort_order (asc|desc,
// default desc). Responds with a JSON array of file metadata.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := storage.ListOptions{
		Prefix: q.Get("prefix"),
	}

	var ok bool
	if opts.Limit, ok = intParam(w, q.Get("limit"), "limit", defaultPageLimit); !ok {
		return
	}
	if opts.Offset, ok = intParam(w, q.Get("offset"), "offset", 0); !ok {
		return
	}
	if opts.SortBy, opts.SortOrder, ok = sortParams(w, q.Get("sort_by"), q.Get("sort_order")); !ok {
		return
	}

	files, err := h.backend.List(r.Context(), opts)
	if err != nil {
		h.writeStorageError(w, "list", "", err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

// Search handles GET /search.
//
// Query parameters: query (substring of uid or name), file_type (name
// suffix such as ".pdf"), owner, created_after, created_before (RFC 3339
// or Unix seconds), plus the same paging and sorting parameters as List.
func (h *FilesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := storage.SearchOptions{
		Query:    q.Get("query"),
		FileType: q.Get("file_type"),
		Owner:    q.Get("owner"),
	}

	var ok bool
	if opts.CreatedAfter, ok = timeParam(w, q.Get("created_after"), "created_after"); !ok {
		return
	}
	if opts.CreatedBefore, ok = timeParam(w, q.Get("created_before"), "created_before"); !ok {
		return
	}
	if opts.Limit, ok = intParam(w, q.Get("limit"), "limit", defaultPageLimit); !ok {
		return
	}
	if opts.Offset, ok = intParam(w, q.Get("offset"), "offset", 0); !ok {
		return
	}
	if opts.SortBy, opts.SortOrder, ok = sortParams(w, q.Get("sort_by"), q.Get("sort_order")); !ok {
		return
	}

	files, err := h.backend.Search(r.Context(), opts)
	if err != nil {
		h.writeStorageError(w, "search", "", err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

// Get handles GET /{uid}.
//
// Streams the stored blob with its original filename and media type.
// With ?meta=true the blob is not opened and the file metadata is
// returned as JSON instead.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	if r.URL.Query().Get("meta") == "true" {
		file, err := h.backend.Get(r.Context(), uid)
		if err != nil {
			h.writeStorageError(w, "get", uid, err)
			return
		}
		writeJSON(w, http.StatusOK, file)
		return
	}

	file, rc, err := h.backend.Download(r.Context(), uid)
	if err != nil {
		h.writeStorageError(w, "download", uid, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Type", file.MimeType())
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is log the broken stream
		logger.Warn("Blob stream interrupted",
			logger.KeyUID, uid,
			logger.KeyError, err,
		)
	}
}

// renameRequest is the body of PUT /{uid}.
type renameRequest struct {
	Name string `json:"name"`
}

// Rename handles PUT /{uid}.
//
// Changes the display name of a stored file and responds with the
// updated metadata.
func (h *FilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req renameRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		BadRequest(w, "Name is required")
		return
	}

	file, err := h.backend.Rename(r.Context(), uid, req.Name)
	if err != nil {
		h.writeStorageError(w, "rename", uid, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

// Delete handles DELETE /{uid}.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	if err := h.backend.Delete(r.Context(), uid); err != nil {
		h.writeStorageError(w, "delete", uid, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeStorageError maps backend errors onto HTTP responses. Unexpected
// errors are logged in full and surfaced as an opaque 500.
func (h *FilesHandler) writeStorageError(w http.ResponseWriter, op, uid string, err error) {
	switch {
	case storage.IsNotFound(err):
		NotFound(w, "File not found")
	case storage.IsInvalidArgument(err):
		BadRequest(w, err.Error())
	default:
		logger.Error("Storage operation failed",
			"operation", op,
			logger.KeyUID, uid,
			logger.KeyBackend, h.backend.Type(),
			logger.KeyError, err,
		)
		InternalServerError(w, "Storage operation failed")
	}
}

// intParam parses a non-negative integer query parameter, falling back
// to def when absent. Returns false after writing a 400 on bad input.
func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		BadRequest(w, fmt.Sprintf("Invalid %s: must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}

// sortParams parses the sort_by and sort_order query parameters.
// Returns false after writing a 400 on bad input.
func sortParams(w http.ResponseWriter, byRaw, orderRaw string) (storage.SortBy, storage.SortOrder, bool) {
	by, err := storage.ParseSortBy(byRaw)
	if err != nil {
		BadRequest(w, err.Error())
		return "", "", false
	}

	order, err := storage.ParseSortOrder(orderRaw)
	if err != nil {
		BadRequest(w, err.Error())
		return "", "", false
	}

	return by, order, true
}

// timeParam parses a timestamp query parameter as RFC 3339 or Unix
// seconds. Returns false after writing a 400 on bad input.
func timeParam(w http.ResponseWriter, raw, name string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}

	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, true
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		ts := time.Unix(secs, 0).UTC()
		return &ts, true
	}

	BadRequest(w, fmt.Sprintf("Invalid %s: must be RFC 3339 or Unix seconds", name))
	return nil, false
}
