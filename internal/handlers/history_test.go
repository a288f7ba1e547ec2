package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func newTestHistoryRouter() *mux.Router {
	h := NewHistoryHandler(nil, zap.NewNop())
	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/history").Subrouter())
	return router
}

func TestCorrectEntryRequiresAuth(t *testing.T) {
	t.Parallel()

	router := newTestHistoryRouter()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("PATCH", "/history/1/session-a", strings.NewReader(`{}`)))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestCorrectEntryRejectsBadBody(t *testing.T) {
	t.Parallel()

	router := newTestHistoryRouter()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest("PATCH", "/history/1/session-a", `{"completed":`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestCorrectEntryRejectsNonNumericTodoID(t *testing.T) {
	t.Parallel()

	router := newTestHistoryRouter()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest("PATCH", "/history/abc/session-a", `{}`))

	// The route pattern only matches numeric todo IDs.
	if rr.Code == http.StatusOK {
		t.Errorf("Expected non-200 for non-numeric todo ID, got %d", rr.Code)
	}
}
