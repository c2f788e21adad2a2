package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskboard-api/internal/auth"
	"github.com/redmonkez12/taskboard-api/internal/httputil"
	"github.com/redmonkez12/taskboard-api/internal/logging"
	"github.com/redmonkez12/taskboard-api/internal/task"
)

// TaskLister is the slice of the task service the dashboard needs: a
// read-only view of one owner's tasks.
type TaskLister interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]task.Task, error)
}

// Handler serves the dashboard statistics endpoint.
type Handler struct {
	tasks  TaskLister
	logger *logging.Logger
	now    func() time.Time
}

func NewHandler(tasks TaskLister, logger *logging.Logger) *Handler {
	return &Handler{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// Dashboard handles the statistics endpoint
// @Summary      Task statistics
// @Description  Aggregate the caller's tasks into dashboard metrics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Dashboard
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /tasks/stats [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "No token provided", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	tasks, err := h.tasks.List(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list tasks for stats", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to fetch tasks", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, Compute(tasks, h.now()), http.StatusOK)
}
