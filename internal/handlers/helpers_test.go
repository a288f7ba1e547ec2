package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	respondJSON(rr, http.StatusCreated, map[string]string{"message": "hello"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("Expected success to be true")
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Error("Expected timestamp to be present")
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data object")
	}
	if data["message"] != "hello" {
		t.Errorf("Expected message 'hello', got %v", data["message"])
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	respondJSONError(rr, http.StatusBadRequest, "Bad Request", "Text is required")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("Expected success to be false")
	}
	if body["error"] != "Bad Request" {
		t.Errorf("Expected error 'Bad Request', got %v", body["error"])
	}
	if body["message"] != "Text is required" {
		t.Errorf("Expected message preserved, got %v", body["message"])
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	t.Parallel()

	short := "small failure"
	if got := sanitizeErrorMessage(short); got != short {
		t.Errorf("Expected short message unchanged, got %q", got)
	}

	long := strings.Repeat("x", 500)
	got := sanitizeErrorMessage(long)
	if len(got) != 203 {
		t.Errorf("Expected truncation to 200 chars plus ellipsis, got length %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated message to end with ellipsis")
	}
}
