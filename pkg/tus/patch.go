package tus

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/tus/scratch"
)

// patch is the sole mutation path: it appends body bytes at the declared
// offset, enforces the size cap, and fires completion when the upload
// reaches its declared size.
func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, ErrUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != contentType {
		writeError(w, ErrUnsupportedMediaType)
		return
	}

	reqOffset, err := strconv.ParseInt(r.Header.Get(headerUploadOffset), 10, 64)
	if err != nil || reqOffset < 0 {
		writeError(w, ErrInvalidOffset)
		return
	}

	uid := chi.URLParam(r, "uid")

	unlock, ok := h.locks.tryLock(uid)
	if !ok {
		// Another writer holds the uid. Tell this client where the upload
		// stands, if the sidecar is readable.
		if desc, err := h.store.Get(uid); err == nil {
			writeOffsetConflict(w, desc.Offset)
		} else {
			writeError(w, ErrUploadLocked)
		}
		return
	}
	defer unlock()

	desc, err := h.store.Get(uid)
	if err != nil {
		writeError(w, err)
		return
	}

	if reqOffset != desc.Offset {
		writeOffsetConflict(w, desc.Offset)
		return
	}

	// A deferred-length upload declares its final size by sending
	// Upload-Length on a PATCH. A non-deferred upload may repeat the
	// header, but it has to agree with the declared size.
	if lengthHdr := r.Header.Get(headerUploadLength); lengthHdr != "" {
		n, err := strconv.ParseInt(lengthHdr, 10, 64)
		if err != nil || n < 0 {
			writeError(w, ErrInvalidLength)
			return
		}
		switch {
		case desc.DeferLength:
			if n > h.cfg.MaxSize {
				writeError(w, ErrSizeExceeded)
				return
			}
			if n < desc.Offset {
				writeError(w, ErrLengthBelowOffset)
				return
			}
			desc.Size = &n
			desc.DeferLength = false
			if err := h.store.Put(desc); err != nil {
				writeError(w, err)
				return
			}
		case desc.Size == nil || *desc.Size != n:
			writeError(w, ErrLengthMismatch)
			return
		}
	}

	truncated, err := h.appendBody(&desc, r)
	if err != nil {
		// The partial advance is already persisted; the upload stays
		// resumable even though this request failed.
		writeError(w, err)
		return
	}

	if truncated {
		w.Header().Set(headerTusResumable, Version)
		w.Header().Set(headerUploadOffset, strconv.FormatInt(desc.Offset, 10))
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

	w.Header().Set(headerTusResumable, Version)
	w.Header().Set(headerUploadOffset, strconv.FormatInt(desc.Offset, 10))
	h.setExpires(w, desc)
	w.WriteHeader(http.StatusNoContent)
}

// appendBody drains the request body into the scratch payload, truncating
// at the number of bytes the upload may still accept. Returns truncated
// when the body held more than that: the head slice that fit is already
// persisted and the caller must answer 413.
func (h *Handler) appendBody(desc *scratch.Descriptor, r *http.Request) (bool, error) {
	remaining := h.cfg.MaxSize - desc.Offset
	if !desc.DeferLength && desc.Size != nil {
		if left := *desc.Size - desc.Offset; left < remaining {
			remaining = left
		}
	}
	if remaining < 0 {
		remaining = 0
	}

	written, err := h.store.Append(desc, io.LimitReader(r.Body, remaining))
	observeBytes(h.metrics, written)
	if err != nil {
		return false, err
	}
	if written > 0 {
		logger.Debug("chunk persisted",
			logger.KeyUID, desc.UID,
			logger.KeyBytesWritten, written,
			logger.KeyOffset, desc.Offset)
	}

	if written == remaining {
		// The limit was hit exactly; probe whether the client had more.
		var probe [1]byte
		if n, _ := io.ReadFull(r.Body, probe[:]); n > 0 {
			return true, nil
		}
	}

	return false, nil
}

// complete hands the finished upload to the completion pipeline. The 204
// for the terminal PATCH is only written after this returns, so client
// success implies durable ingestion.
func (h *Handler) complete(ctx context.Context, desc *scratch.Descriptor) error {
	if h.completer == nil {
		return nil
	}

	if err := h.completer.Complete(ctx, *desc); err != nil {
		logger.Error("completion failed", logger.KeyUID, desc.UID, logger.KeyError, err)
		return err
	}

	observeCompleted(h.metrics)
	logger.Info("upload completed",
		logger.KeyUID, desc.UID,
		logger.KeyFilename, desc.Filename(),
		logger.KeySize, desc.Offset)
	return nil
}
