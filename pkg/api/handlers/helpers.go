// Package handlers implements the management and system HTTP handlers.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jasonlovesdoggo/put/internal/logger"
)

// errorResponse is the JSON payload written for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
//
// Encoding happens into a buffer first so an encoding failure can still
// produce an error response before any headers are sent.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", logger.KeyError, err)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// BadRequest writes a 400 response with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// NotFound writes a 404 response with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: msg})
}

// InternalServerError writes a 500 response with the given message.
func InternalServerError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (an error response
// is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}
