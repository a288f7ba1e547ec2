package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rwalling/tasklog/internal/models"
	"github.com/rwalling/tasklog/internal/request"
)

// newTestTodoHandler builds a handler with nil repositories. Only paths that
// fail before touching storage can be exercised this way; storage behavior is
// covered by the database package tests.
func newTestTodoHandler() *TodoHandler {
	return NewTodoHandler(nil, nil, nil, zap.NewNop())
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	claims := &models.JWTClaims{Sub: "user-1"}
	return req.WithContext(request.WithClaims(req.Context(), claims))
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestCreateTodoRejectsUnauthenticated(t *testing.T) {
	t.Parallel()

	h := newTestTodoHandler()
	req := httptest.NewRequest("POST", "/api/v1/todos", strings.NewReader(`{"text":"x"}`))
	rr := httptest.NewRecorder()
	h.CreateTodo(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestCreateTodoValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "missing text",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty text",
			body:           `{"text":""}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "whitespace only text",
			body:           `{"text":"   "}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           `{"text":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "text too long",
			body:           `{"text":"` + strings.Repeat("a", MaxTodoTextLength+1) + `"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestTodoHandler()
			rr := httptest.NewRecorder()
			h.CreateTodo(rr, authedRequest("POST", "/api/v1/todos", tt.body))

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			body := decodeErrorBody(t, rr)
			if success, ok := body["success"].(bool); !ok || success {
				t.Error("Expected success to be false")
			}
		})
	}
}

func TestUpdateTodoRejectsEmptyText(t *testing.T) {
	t.Parallel()

	h := newTestTodoHandler()
	router := mux.NewRouter()
	router.HandleFunc("/todos/{id:[0-9]+}", h.UpdateTodo).Methods("PATCH")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest("PATCH", "/todos/5", `{"text":"   "}`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestImportRejectsNonArrayPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing both fields",
			body: `{}`,
		},
		{
			name: "todos is an object",
			body: `{"todos":{},"history":[]}`,
		},
		{
			name: "history is a string",
			body: `{"todos":[],"history":"[]"}`,
		},
		{
			name: "todos null",
			body: `{"todos":null,"history":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestTodoHandler()
			rr := httptest.NewRecorder()
			h.Import(rr, authedRequest("POST", "/api/v1/todos/import", tt.body))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rr.Code)
			}
		})
	}
}

func TestTodoRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	h := newTestTodoHandler()
	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/todos").Subrouter())

	tests := []struct {
		method string
		target string
	}{
		{"GET", "/todos"},
		{"POST", "/todos/reset"},
		{"GET", "/todos/export"},
		{"POST", "/todos/import"},
		{"PATCH", "/todos/1"},
		{"PATCH", "/todos/1/toggle"},
		{"DELETE", "/todos/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, strings.NewReader(`{}`)))

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", rr.Code)
			}
		})
	}
}
