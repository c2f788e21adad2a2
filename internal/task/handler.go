package task

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/taskboard-api/internal/auth"
	"github.com/redmonkez12/taskboard-api/internal/httputil"
	"github.com/redmonkez12/taskboard-api/internal/logging"
)

// Handler contains HTTP handlers for task endpoints. All routes run
// behind auth.Middleware, so the owner identity is always present in the
// request context.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// CreateTaskRequest represents the task creation request body
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	DueDate     *Date  `json:"dueDate"`
}

// UpdateTaskRequest represents a partial task update. Absent fields are
// left untouched. There is no owner field: ownership is not patchable.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *Date   `json:"dueDate"`
}

// MessageResponse is a simple confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// List handles listing the caller's tasks
// @Summary      List tasks
// @Description  Return all tasks owned by the caller, most recently created first
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Task
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "No token provided", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	tasks, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list tasks", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to fetch tasks", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, tasks, http.StatusOK)
}

// Create handles task creation
// @Summary      Create a task
// @Description  Create a task owned by the caller. Missing fields get defaults.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTaskRequest true "Task fields"
// @Success      201 {object} Task
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "No token provided", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create task request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), ownerID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    Priority(req.Priority),
		Status:      Status(req.Status),
		DueDate:     req.DueDate,
	})
	if err != nil {
		if isValidationError(err) {
			logger.Warn("task creation failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
			return
		}
		logger.Error("task creation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to create task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("task created", "task_id", created.ID)

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Update handles partial task updates
// @Summary      Update a task
// @Description  Apply a partial update to one of the caller's tasks
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body UpdateTaskRequest true "Fields to change"
// @Success      200 {object} Task
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse "Task not found"
// @Router       /tasks/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "No token provided", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// A malformed id can't name an owned task; same answer as absent.
		httputil.RespondErrorWithCode(w, "Task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var req UpdateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Warn("invalid update task request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	patch := UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		DueDateSet:  hasKey(body, "dueDate"),
	}
	if req.Priority != nil {
		p := Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := Status(*req.Status)
		patch.Status = &s
	}

	updated, err := h.service.Update(r.Context(), ownerID, taskID, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
			return
		}
		if isValidationError(err) {
			logger.Warn("task update failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
			return
		}
		logger.Error("task update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to update task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("task updated", "task_id", updated.ID)

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete handles task deletion
// @Summary      Delete a task
// @Description  Permanently delete one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse "Task not found"
// @Router       /tasks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "No token provided", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
			return
		}
		logger.Error("task deletion failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to delete task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("task deleted", "task_id", taskID)

	httputil.RespondJSON(w, MessageResponse{Message: "Task deleted"}, http.StatusOK)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidStatus)
}

// hasKey reports whether a top-level key appears in the JSON body, which
// is how an explicit "dueDate": null (clear it) is told apart from an
// absent field (leave it).
func hasKey(body []byte, key string) bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}
	_, ok := raw[key]
	return ok
}
