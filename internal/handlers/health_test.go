package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestHealthzBasicMode(t *testing.T) {
	t.Parallel()

	// Basic mode answers without touching dependencies, so nil deps are fine.
	h := NewHealthHandler(nil, nil, zap.NewNop())
	rr := httptest.NewRecorder()
	h.Healthz(rr, httptest.NewRequest("GET", "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data object")
	}
	if data["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", data["status"])
	}
	if _, hasChecks := data["checks"]; hasChecks {
		t.Error("Expected no dependency checks in basic mode")
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	handler := Version("1.2.3", "abc1234")
	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest("GET", "/version", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data object")
	}
	if data["version"] != "1.2.3" || data["commit"] != "abc1234" {
		t.Errorf("Unexpected version payload: %v", data)
	}
}
