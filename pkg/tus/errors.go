package tus

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// Error is a protocol error with a fixed HTTP status.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

var (
	ErrNotFound = &Error{Status: http.StatusNotFound, Code: "NOT_FOUND",
		Message: "upload not found"}
	ErrMissingLength = &Error{Status: http.StatusBadRequest, Code: "MISSING_LENGTH",
		Message: "Upload-Length or Upload-Defer-Length header required"}
	ErrInvalidLength = &Error{Status: http.StatusBadRequest, Code: "INVALID_LENGTH",
		Message: "Upload-Length must be a non-negative integer"}
	ErrInvalidDeferLength = &Error{Status: http.StatusBadRequest, Code: "INVALID_DEFER_LENGTH",
		Message: "Upload-Defer-Length must be 1"}
	ErrLengthMismatch = &Error{Status: http.StatusBadRequest, Code: "LENGTH_MISMATCH",
		Message: "Upload-Length does not match the declared size"}
	ErrLengthBelowOffset = &Error{Status: http.StatusBadRequest, Code: "LENGTH_BELOW_OFFSET",
		Message: "Upload-Length is less than the current offset"}
	ErrInvalidOffset = &Error{Status: http.StatusBadRequest, Code: "INVALID_OFFSET",
		Message: "Upload-Offset must be a non-negative integer"}
	ErrInvalidMetadata = &Error{Status: http.StatusBadRequest, Code: "INVALID_METADATA",
		Message: "Upload-Metadata header is malformed"}
	ErrUnauthorized = &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED",
		Message: "authentication required"}
	ErrOffsetConflict = &Error{Status: http.StatusConflict, Code: "OFFSET_CONFLICT",
		Message: "Upload-Offset does not match the current offset"}
	ErrUploadLocked = &Error{Status: http.StatusConflict, Code: "UPLOAD_LOCKED",
		Message: "another request is writing to this upload"}
	ErrSizeExceeded = &Error{Status: http.StatusRequestEntityTooLarge, Code: "SIZE_EXCEEDED",
		Message: "upload exceeds the maximum allowed size"}
	ErrUnsupportedMediaType = &Error{Status: http.StatusUnsupportedMediaType, Code: "UNSUPPORTED_MEDIA_TYPE",
		Message: "Content-Type must be application/offset+octet-stream"}
)

// errorBody is the JSON shape of every error response. Offset is only set
// on offset-conflict responses so a client can resynchronize without an
// extra HEAD.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Offset  *int64 `json:"offset,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps any error to an HTTP response. Protocol errors keep
// their status; storage not-found maps to 404; everything else is an
// opaque 500 whose id links the response to the logged detail.
func writeError(w http.ResponseWriter, err error) {
	var perr *Error
	switch {
	case errors.As(err, &perr):
		writeJSONError(w, perr.Status, errorBody{Code: perr.Code, Message: perr.Message})
	case storage.IsNotFound(err):
		writeJSONError(w, ErrNotFound.Status, errorBody{Code: ErrNotFound.Code, Message: ErrNotFound.Message})
	default:
		id := newUID()[:8]
		logger.Error("internal error", "error_id", id, logger.KeyError, err)
		writeJSONError(w, http.StatusInternalServerError, errorBody{
			Code:    "INTERNAL",
			Message: "internal server error (id " + id + ")",
		})
	}
}

// writeOffsetConflict emits a 409 carrying the authoritative offset.
func writeOffsetConflict(w http.ResponseWriter, offset int64) {
	writeJSONError(w, ErrOffsetConflict.Status, errorBody{
		Code:    ErrOffsetConflict.Code,
		Message: ErrOffsetConflict.Message,
		Offset:  &offset,
	})
}
