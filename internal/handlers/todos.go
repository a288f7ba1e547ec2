package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rwalling/tasklog/internal/database"
	logpkg "github.com/rwalling/tasklog/internal/logger"
	"github.com/rwalling/tasklog/internal/models"
	"github.com/rwalling/tasklog/internal/request"
	"github.com/rwalling/tasklog/internal/validation"
)

const (
	// MaxTodoTextLength is the maximum length for todo text
	MaxTodoTextLength = 10000
)

// TodoHandler handles todo, reset and import/export requests
type TodoHandler struct {
	todoRepo     *database.TodoRepository
	historyRepo  *database.HistoryRepository
	transferRepo *database.TransferRepository
	logger       *zap.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoRepo *database.TodoRepository, historyRepo *database.HistoryRepository, transferRepo *database.TransferRepository, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todoRepo:     todoRepo,
		historyRepo:  historyRepo,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers todo routes on the given router. The router
// should already carry the /todos prefix. Static paths are registered before
// the {id} routes so mux matches them first.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTodos).Methods("GET")
	r.HandleFunc("", h.CreateTodo).Methods("POST")
	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/import", h.Import).Methods("POST")
	r.HandleFunc("/reset", h.Reset).Methods("POST")
	r.HandleFunc("/{id:[0-9]+}", h.UpdateTodo).Methods("PATCH")
	r.HandleFunc("/{id:[0-9]+}", h.DeleteTodo).Methods("DELETE")
	r.HandleFunc("/{id:[0-9]+}/toggle", h.ToggleTodo).Methods("PATCH")
}

// CreateTodoRequest represents a create todo request
type CreateTodoRequest struct {
	Text          string              `json:"text" validate:"required,min=1,max=10000"`
	Priority      *int                `json:"priority,omitempty"`
	Unit          *string             `json:"unit,omitempty"`
	Category      *string             `json:"category,omitempty"`
	RequiredItems *models.StringList  `json:"requiredItems,omitempty"`
	Procedure     *models.StringList  `json:"procedure,omitempty"`
	Subtasks      *models.SubtaskList `json:"subtasks,omitempty"`
}

// UpdateTodoRequest represents a partial update request. Absent fields leave
// the todo untouched; unrecognized fields are ignored.
type UpdateTodoRequest struct {
	Text          *string             `json:"text,omitempty"`
	Unit          *string             `json:"unit,omitempty"`
	Category      *string             `json:"category,omitempty"`
	Priority      *int                `json:"priority,omitempty"`
	ActiveCounter *int                `json:"activeCounter,omitempty"`
	ActiveTimer   *int                `json:"activeTimer,omitempty"`
	RequiredItems *models.StringList  `json:"requiredItems,omitempty"`
	Procedure     *models.StringList  `json:"procedure,omitempty"`
	Subtasks      *models.SubtaskList `json:"subtasks,omitempty"`
}

// ToggleTodoRequest updates only the completion flag
type ToggleTodoRequest struct {
	Completed bool `json:"completed"`
}

// ListTodosResponse is the list read: every todo joined with its history
// from the recent-session window, plus the window itself
type ListTodosResponse struct {
	Tasks    []*models.TodoWithHistory `json:"tasks"`
	Sessions []models.SessionSummary   `json:"sessions"`
}

// ListTodos returns all todos in priority order, each carrying its history
// entries restricted to the most recent sessions. This composition is
// read-only.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}
	ctx := r.Context()

	todos, err := h.todoRepo.List(ctx)
	if err != nil {
		h.logger.Error("failed_to_list_todos", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve todos")
		return
	}

	sessions, err := h.historyRepo.RecentSessions(ctx, database.RecentSessionLimit)
	if err != nil {
		h.logger.Error("failed_to_list_sessions", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve history")
		return
	}

	sessionIDs := make([]string, len(sessions))
	for i, s := range sessions {
		sessionIDs[i] = s.SessionID
	}

	entries, err := h.historyRepo.BySessions(ctx, sessionIDs)
	if err != nil {
		h.logger.Error("failed_to_fetch_history", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve history")
		return
	}

	byTodo := make(map[int64][]*models.HistoryEntry, len(todos))
	for _, e := range entries {
		byTodo[e.TodoID] = append(byTodo[e.TodoID], e)
	}

	tasks := make([]*models.TodoWithHistory, len(todos))
	for i, t := range todos {
		history := byTodo[t.ID]
		if history == nil {
			history = []*models.HistoryEntry{}
		}
		tasks[i] = &models.TodoWithHistory{Todo: *t, History: history}
	}

	respondJSON(w, http.StatusOK, ListTodosResponse{Tasks: tasks, Sessions: sessions})
}

// CreateTodo creates a new todo. Text is required; an explicit priority
// inserts mid-list, otherwise the todo is appended.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	var req CreateTodoRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", validationErrors[0].Error()))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required")
		return
	}

	params := database.CreateTodoParams{
		Text:     req.Text,
		Priority: req.Priority,
	}
	if req.Unit != nil {
		params.Unit = validation.SanitizeText(*req.Unit)
	}
	if req.Category != nil {
		params.Category = *req.Category
	}
	if req.RequiredItems != nil {
		params.RequiredItems = *req.RequiredItems
	}
	if req.Procedure != nil {
		params.Procedure = *req.Procedure
	}
	if req.Subtasks != nil {
		params.Subtasks = *req.Subtasks
	}

	todo, err := h.todoRepo.Create(r.Context(), params)
	if err != nil {
		h.logger.Error("failed_to_create_todo", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create todo")
		return
	}

	respondJSON(w, http.StatusCreated, todo)
}

// UpdateTodo applies a partial update. A request with no recognized fields
// writes nothing and still reports success.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	id, err := todoID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo ID")
		return
	}

	var req UpdateTodoRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	params := database.UpdateTodoParams{
		Unit:          req.Unit,
		Category:      req.Category,
		Priority:      req.Priority,
		RequiredItems: req.RequiredItems,
		Procedure:     req.Procedure,
		Subtasks:      req.Subtasks,
	}
	if req.Text != nil {
		sanitized := validation.SanitizeText(*req.Text)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text cannot be empty")
			return
		}
		if len(sanitized) > MaxTodoTextLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Text exceeds maximum length of %d characters", MaxTodoTextLength))
			return
		}
		params.Text = &sanitized
	}
	// Live metrics never go negative.
	if req.ActiveCounter != nil {
		counter := max(*req.ActiveCounter, 0)
		params.ActiveCounter = &counter
	}
	if req.ActiveTimer != nil {
		timer := max(*req.ActiveTimer, 0)
		params.ActiveTimer = &timer
	}

	if err := h.todoRepo.Update(r.Context(), id, params); err != nil {
		h.logger.Error("failed_to_update_todo",
			zap.Int64("todo_id", id),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update todo")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// ToggleTodo updates only the completion flag
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	id, err := todoID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo ID")
		return
	}

	var req ToggleTodoRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	if err := h.todoRepo.SetCompleted(r.Context(), id, req.Completed); err != nil {
		h.logger.Error("failed_to_toggle_todo",
			zap.Int64("todo_id", id),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to toggle todo")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"completed": req.Completed})
}

// DeleteTodo removes a todo and its history. Deleting a missing todo still
// reports success.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	id, err := todoID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo ID")
		return
	}

	if err := h.todoRepo.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed_to_delete_todo",
			zap.Int64("todo_id", id),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete todo")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// Reset archives every todo's live state into a fresh session and clears it
func (h *TodoHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	sessionID, archived, err := h.historyRepo.Reset(r.Context())
	if err != nil {
		h.logger.Error("failed_to_reset", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Reset failed")
		return
	}

	h.logger.Info("session_reset",
		zap.String("session_id", sessionID),
		zap.Int("archived", archived),
	)
	respondJSON(w, http.StatusOK, map[string]any{"sessionId": sessionID, "archived": archived})
}

// Export returns the full todo and history tables as a portable backup
func (h *TodoHandler) Export(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	backup, err := h.transferRepo.Export(r.Context())
	if err != nil {
		h.logger.Error("failed_to_export", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Export failed")
		return
	}

	respondJSON(w, http.StatusOK, backup)
}

// ImportRequest carries the raw backup payload. Both fields must decode to
// arrays; the tolerant list types inside Todo absorb legacy string-encoded
// structured fields.
type ImportRequest struct {
	Todos   json.RawMessage `json:"todos"`
	History json.RawMessage `json:"history"`
}

// Import replaces the store's contents with the supplied backup
func (h *TodoHandler) Import(w http.ResponseWriter, r *http.Request) {
	if request.ClaimsFromContext(r) == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}

	var req ImportRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	// Both fields must be arrays. Unmarshal leaves the slice nil for JSON
	// null, so the nil check also rejects explicit nulls.
	var todos []*models.Todo
	if req.Todos == nil || json.Unmarshal(req.Todos, &todos) != nil || todos == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid backup format")
		return
	}
	var history []*models.HistoryEntry
	if req.History == nil || json.Unmarshal(req.History, &history) != nil || history == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid backup format")
		return
	}

	count, err := h.transferRepo.Import(r.Context(), todos, history)
	if err != nil {
		h.logger.Error("failed_to_import", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Import failed")
		return
	}

	h.logger.Info("backup_imported", zap.Int("count", count))
	respondJSON(w, http.StatusOK, map[string]any{"count": count})
}

// todoID extracts the {id} path variable
func todoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// decodeBody decodes a JSON request body, writing the error response itself
// when decoding fails
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
		return err
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
	return err
}
