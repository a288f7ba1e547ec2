package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rwalling/tasklog/internal/database"
	logpkg "github.com/rwalling/tasklog/internal/logger"
	"github.com/rwalling/tasklog/internal/request"
)

// HistoryHandler handles corrections to archived session entries
type HistoryHandler struct {
	historyRepo *database.HistoryRepository
	logger      *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyRepo *database.HistoryRepository, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{historyRepo: historyRepo, logger: logger}
}

// RegisterRoutes registers history routes on the given router. The router
// should already carry the /history prefix.
func (h *HistoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{todoId:[0-9]+}/{sessionId}", h.CorrectEntry).Methods("PATCH")
}

// CorrectEntryRequest is a partial update to an archived entry. Counter and
// timer snapshots travel together; a lone half of the pair is ignored.
type CorrectEntryRequest struct {
	SnapshotCounter *int  `json:"snapshotCounter,omitempty"`
	SnapshotTimer   *int  `json:"snapshotTimer,omitempty"`
	Completed       *bool `json:"completed,omitempty"`
}

// CorrectEntry patches the archived entry for one todo within one session.
// Targeting a missing entry is not an error; the response reports zero rows.
func (h *HistoryHandler) CorrectEntry(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	vars := mux.Vars(r)
	todoID, err := strconv.ParseInt(vars["todoId"], 10, 64)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo ID")
		return
	}
	sessionID := vars["sessionId"]
	if sessionID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Session ID is required")
		return
	}

	var req CorrectEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	params := database.CorrectHistoryParams{
		SnapshotCounter: req.SnapshotCounter,
		SnapshotTimer:   req.SnapshotTimer,
		Completed:       req.Completed,
	}
	updated, err := h.historyRepo.Correct(r.Context(), todoID, sessionID, params)
	if err != nil {
		h.logger.Error("failed_to_correct_history",
			zap.Int64("todo_id", todoID),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"updated": updated})
}
