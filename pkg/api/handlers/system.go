package handlers

import (
	"net/http"
)

// Version is the server protocol version advertised by the signature
// endpoint and the CLI.
const Version = "1.0.1"

// SignatureVerifier is the constant the CLI checks to confirm it is
// talking to a real instance of this server and not some other service
// that happens to answer on the same port.
const SignatureVerifier = "ArafOrzCatMan"

// compatibleVersions lists the protocol versions this server accepts
// clients of.
var compatibleVersions = []string{Version}

// SystemHandler handles the unauthenticated system endpoints.
type SystemHandler struct {
	appName string
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(appName string) *SystemHandler {
	return &SystemHandler{appName: appName}
}

// Health handles GET /health.
//
// Returns 200 with {"status":"ok"} as long as the HTTP server is
// responsive. Designed for load balancer and uptime probes.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// SignatureResponse is the payload of the signature endpoint.
type SignatureResponse struct {
	Version            string   `json:"version"`
	Verifier           string   `json:"verifier"`
	CompatibleVersions []string `json:"compatible_versions"`
}

// Signature handles PUT /signature.
//
// The CLI calls this when registering an instance URI to verify the
// target really is one of these servers. The method is a PUT because
// the project is named put, and that joke was too good to pass on.
func (h *SystemHandler) Signature(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SignatureResponse{
		Version:            Version,
		Verifier:           SignatureVerifier,
		CompatibleVersions: compatibleVersions,
	})
}
