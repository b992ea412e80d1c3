// Package tus implements the tus 1.0.0 resumable upload protocol over a
// scratch store.
//
// Supported extensions: creation, creation-defer-length,
// creation-with-upload, expiration, termination.
//
// An upload is born by POST, grows only through PATCH, and on reaching its
// declared size is handed to a Completer for ingestion into the durable
// backend before the final 204 is written. PATCHes on the same uid are
// serialized by a per-uid lock; a concurrent writer sees 409.
package tus

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/tus/scratch"
)

// Version is the tus protocol version advertised and accepted.
const Version = "1.0.0"

// Extensions advertised in Tus-Extension.
const Extensions = "creation,creation-defer-length,creation-with-upload,expiration,termination"

// contentType is the only media type PATCH bodies may carry.
const contentType = "application/offset+octet-stream"

const (
	headerTusResumable      = "Tus-Resumable"
	headerTusVersion        = "Tus-Version"
	headerTusExtension      = "Tus-Extension"
	headerTusMaxSize        = "Tus-Max-Size"
	headerUploadOffset      = "Upload-Offset"
	headerUploadLength      = "Upload-Length"
	headerUploadDeferLength = "Upload-Defer-Length"
	headerUploadMetadata    = "Upload-Metadata"
	headerUploadExpires     = "Upload-Expires"
)

// Completer ingests a finished upload into durable storage. Complete is
// called with the per-uid lock held, after every declared byte is on disk;
// it must leave scratch untouched on failure so the client can retry.
type Completer interface {
	Complete(ctx context.Context, desc scratch.Descriptor) error
}

// Config holds the tunables of the upload engine.
type Config struct {
	// Prefix is the path segment the routes are mounted under, without
	// slashes. Default: "files".
	Prefix string

	// MaxSize caps the total size of a single upload. The engine never
	// persists a byte past it.
	MaxSize int64

	// ExpirationPeriod is how long an incomplete upload is retained.
	ExpirationPeriod time.Duration

	// Authorize guards every route except the scratch download, which
	// stays open so a creation link can be shared before the upload
	// finishes. Nil allows everything.
	Authorize func(*http.Request) bool
}

// Handler serves the tus protocol over one scratch store.
type Handler struct {
	store     *scratch.Store
	completer Completer
	locks     *locker
	metrics   Metrics
	cfg       Config
	basePath  string
}

// NewHandler wires the engine. completer may be nil, in which case
// finished uploads simply remain in scratch (useful in tests).
func NewHandler(store *scratch.Store, completer Completer, cfg Config, m Metrics) *Handler {
	if cfg.Prefix == "" {
		cfg.Prefix = "files"
	}

	return &Handler{
		store:     store,
		completer: completer,
		locks:     newLocker(),
		metrics:   m,
		cfg:       cfg,
		basePath:  "/" + strings.Trim(cfg.Prefix, "/"),
	}
}

// BasePath returns the mount path, e.g. "/files".
func (h *Handler) BasePath() string { return h.basePath }

// Routes returns the protocol router, ready to be mounted at BasePath.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Options("/", h.capabilities)
	r.Post("/", h.create)

	r.Options("/{uid}", h.uploadCapabilities)
	r.Head("/{uid}", h.head)
	r.Patch("/{uid}", h.patch)
	r.Delete("/{uid}", h.terminate)
	r.Get("/{uid}", h.download)

	return r
}

// newUID returns a fresh 32-hex identifier.
func newUID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

func (h *Handler) authorized(r *http.Request) bool {
	return h.cfg.Authorize == nil || h.cfg.Authorize(r)
}

func (h *Handler) setCapabilityHeaders(w http.ResponseWriter) {
	w.Header().Set(headerTusResumable, Version)
	w.Header().Set(headerTusVersion, Version)
	w.Header().Set(headerTusExtension, Extensions)
	w.Header().Set(headerTusMaxSize, strconv.FormatInt(h.cfg.MaxSize, 10))
}

func (h *Handler) setExpires(w http.ResponseWriter, desc scratch.Descriptor) {
	if !desc.Expires.IsZero() {
		w.Header().Set(headerUploadExpires, desc.Expires.UTC().Format(http.TimeFormat))
	}
}

// location builds the upload URL for the Location header, honoring
// X-Forwarded-Proto and X-Forwarded-Host from a fronting proxy.
func (h *Handler) location(r *http.Request, uid string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if v := r.Header.Get("X-Forwarded-Proto"); v != "" {
		scheme = v
	}

	host := r.Host
	if v := r.Header.Get("X-Forwarded-Host"); v != "" {
		host = v
	}

	return fmt.Sprintf("%s://%s%s/%s", scheme, host, h.basePath, uid)
}

func (h *Handler) capabilities(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, ErrUnauthorized)
		return
	}
	h.setCapabilityHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uploadCapabilities(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, ErrUnauthorized)
		return
	}
	if _, err := h.store.Get(chi.URLParam(r, "uid")); err != nil {
		writeError(w, err)
		return
	}
	h.setCapabilityHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// create handles POST: allocate a uid, persist the initial descriptor,
// and optionally drain a creation-with-upload body.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, ErrUnauthorized)
		return
	}

	deferHdr := r.Header.Get(headerUploadDeferLength)
	lengthHdr := r.Header.Get(headerUploadLength)

	var size *int64
	deferLength := false
	switch {
	case deferHdr != "":
		if deferHdr != "1" {
			writeError(w, ErrInvalidDeferLength)
			return
		}
		if lengthHdr != "" {
			writeError(w, ErrLengthMismatch)
			return
		}
		deferLength = true
	case lengthHdr == "":
		writeError(w, ErrMissingLength)
		return
	default:
		n, err := strconv.ParseInt(lengthHdr, 10, 64)
		if err != nil || n < 0 {
			writeError(w, ErrInvalidLength)
			return
		}
		if n > h.cfg.MaxSize {
			writeError(w, ErrSizeExceeded)
			return
		}
		size = &n
	}

	md, err := ParseMetadata(r.Header.Get(headerUploadMetadata))
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now().UTC()
	desc := scratch.Descriptor{
		UID:         newUID(),
		Size:        size,
		Metadata:    md,
		CreatedAt:   now,
		DeferLength: deferLength,
		Expires:     now.Add(h.cfg.ExpirationPeriod),
	}

	if err := h.store.Create(desc); err != nil {
		writeError(w, err)
		return
	}
	observeCreated(h.metrics)
	logger.Info("upload created",
		logger.KeyUID, desc.UID,
		logger.KeyFilename, desc.Filename(),
		"defer_length", deferLength)

	w.Header().Set(headerTusResumable, Version)
	w.Header().Set("Location", h.location(r, desc.UID))
	h.setExpires(w, desc)

	if r.Header.Get("Content-Type") == contentType {
		truncated, err := h.appendBody(&desc, r)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set(headerUploadOffset, strconv.FormatInt(desc.Offset, 10))
		if truncated {
			writeJSONError(w, ErrSizeExceeded.Status, errorBody{
				Code: ErrSizeExceeded.Code, Message: ErrSizeExceeded.Message,
			})
			return
		}
		if desc.IsFinal() {
			if err := h.complete(r.Context(), &desc); err != nil {
				writeError(w, err)
				return
			}
		}
	}

	w.WriteHeader(http.StatusCreated)
}

// head reports the resume point. It requires both descriptor and payload
// to exist, so a half-removed upload reads as gone.
func (h *Handler) head(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, ErrUnauthorized)
		return
	}

	uid := chi.URLParam(r, "uid")

	desc, err := h.store.Get(uid)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.store.PayloadSize(uid); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(headerTusResumable, Version)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(headerUploadOffset, strconv.FormatInt(desc.Offset, 10))

	if desc.DeferLength {
		w.Header().Set(headerUploadLength, "")
		w.Header().Set(headerUploadDeferLength, "1")
	} else if desc.Size != nil {
		w.Header().Set(headerUploadLength, strconv.FormatInt(*desc.Size, 10))
	}

	if md := SerializeMetadata(desc.Metadata); md != "" {
		w.Header().Set(headerUploadMetadata, md)
	}

	w.WriteHeader(http.StatusOK)
}

// terminate removes the upload. It takes the blocking lock so an in-flight
// PATCH drains before the files disappear under it.
func (h *Handler) terminate(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, ErrUnauthorized)
		return
	}

	uid := chi.URLParam(r, "uid")

	unlock := h.locks.lock(uid)
	defer unlock()

	if err := h.store.Delete(uid); err != nil {
		writeError(w, err)
		return
	}
	observeTerminated(h.metrics)
	logger.Info("upload terminated", logger.KeyUID, uid)

	w.Header().Set(headerTusResumable, Version)
	w.WriteHeader(http.StatusNoContent)
}

// download streams the scratch payload. This is the pre-completion
// convenience read; completed files are served by the management API.
// Unlike the other routes it is not guarded by the auth predicate, so a
// creation link can be shared before the upload finishes.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	desc, err := h.store.Get(uid)
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := h.store.Open(uid)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", desc.Filename()))
	w.Header().Set("Content-Type", desc.MimeType())
	w.Header().Set("Content-Length", strconv.FormatInt(desc.Offset, 10))
	w.Header().Set(headerTusResumable, Version)
	w.WriteHeader(http.StatusOK)

	// Only offset bytes are valid; anything past them is a crash leftover.
	_, _ = io.CopyN(w, f, desc.Offset)
}
