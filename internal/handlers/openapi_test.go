package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testSpec = `openapi: 3.0.3
info:
  title: Test API
  version: 1.0.0
paths: {}
`

func TestOpenAPIServeYAML(t *testing.T) {
	t.Parallel()

	h := NewOpenAPIHandler([]byte(testSpec))
	rr := httptest.NewRecorder()
	h.ServeYAML(rr, httptest.NewRequest("GET", "/api/v1/openapi.yaml", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/x-yaml" {
		t.Errorf("Expected YAML content type, got %q", ct)
	}
	if rr.Body.String() != testSpec {
		t.Error("Expected YAML served verbatim")
	}
}

func TestOpenAPIServeJSON(t *testing.T) {
	t.Parallel()

	h := NewOpenAPIHandler([]byte(testSpec))
	rr := httptest.NewRecorder()
	h.ServeJSON(rr, httptest.NewRequest("GET", "/api/v1/openapi.json", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var doc map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode converted spec: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("Expected openapi version preserved, got %v", doc["openapi"])
	}
	info, ok := doc["info"].(map[string]any)
	if !ok || info["title"] != "Test API" {
		t.Errorf("Expected info.title preserved, got %v", doc["info"])
	}
}

func TestOpenAPIServeJSONInvalidSpec(t *testing.T) {
	t.Parallel()

	h := NewOpenAPIHandler([]byte("\t: not yaml"))
	rr := httptest.NewRecorder()
	h.ServeJSON(rr, httptest.NewRequest("GET", "/api/v1/openapi.json", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for invalid spec, got %d", rr.Code)
	}
}
