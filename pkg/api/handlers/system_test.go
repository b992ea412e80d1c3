package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth_ReturnsOK(t *testing.T) {
	handler := NewSystemHandler("put")
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", resp["status"])
	}
}

func TestSignature_Payload(t *testing.T) {
	handler := NewSystemHandler("put")
	req := httptest.NewRequest("PUT", "/signature", nil)
	w := httptest.NewRecorder()

	handler.Signature(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp SignatureResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Version != Version {
		t.Errorf("Expected version %q, got %q", Version, resp.Version)
	}
	if resp.Verifier != SignatureVerifier {
		t.Errorf("Expected verifier %q, got %q", SignatureVerifier, resp.Verifier)
	}
	if len(resp.CompatibleVersions) != 1 || resp.CompatibleVersions[0] != Version {
		t.Errorf("Expected compatible_versions [%q], got %v", Version, resp.CompatibleVersions)
	}
}
