package middleware

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := SecurityHeaders(false)(okHandler())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	expected := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'",
	}
	for header, want := range expected {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("Expected %s %q, got %q", header, want, got)
		}
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("Expected no HSTS header when disabled")
	}
}

func TestSecurityHeadersHSTSRequiresTLS(t *testing.T) {
	t.Parallel()

	handler := SecurityHeaders(true)(okHandler())

	plain := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, plain)
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("Expected no HSTS header on plaintext request")
	}

	secure := httptest.NewRequest("GET", "https://example.com/", nil)
	secure.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, secure)
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS header on TLS request")
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		contentType    string
		expectedStatus int
	}{
		{
			name:           "get without content type passes",
			method:         "GET",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "post without content type rejected",
			method:         "POST",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "post with json passes",
			method:         "POST",
			contentType:    "application/json",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "post with charset passes",
			method:         "POST",
			contentType:    "application/json; charset=utf-8",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "patch with form rejected",
			method:         "PATCH",
			contentType:    "application/x-www-form-urlencoded",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			ContentType(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestMaxRequestSizeRejectsOversizedContentLength(t *testing.T) {
	t.Parallel()

	handler := MaxRequestSize(10)(okHandler())
	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 100)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	t.Parallel()

	handler := ErrorHandler(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/todos", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("Expected success to be false")
	}
	if strings.Contains(resp.Message, "boom") {
		t.Error("Expected panic detail to stay out of the response")
	}
	if resp.Path != "/api/v1/todos" {
		t.Errorf("Expected path in envelope, got %q", resp.Path)
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	t.Parallel()

	handler := Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected wrapped status to pass through, got %d", rr.Code)
	}
}
