package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// TaskHandler serves /api/tasks. Every route acts on behalf of the user
// named by the userId query parameter.
type TaskHandler struct {
	taskService service.TaskService
	userService service.UserService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, userService service.UserService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		userService: userService,
	}
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req.ToInput(), userID)
	h.respondTask(w, r, http.StatusCreated, task, err)
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID, userID)
	h.respondTask(w, r, http.StatusOK, task, err)
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.taskService.ListTasks)
}

// ListByPriority handles GET /api/tasks/sorted/priority.
func (h *TaskHandler) ListByPriority(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.taskService.ListByPriority)
}

// FindOverdue handles GET /api/tasks/overdue.
func (h *TaskHandler) FindOverdue(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.taskService.FindOverdue)
}

// FindFuture handles GET /api/tasks/future.
func (h *TaskHandler) FindFuture(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.taskService.FindFuture)
}

// FilterByStatus handles GET /api/tasks/status/{status}.
func (h *TaskHandler) FilterByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := parseStatus(w, r, chi.URLParam(r, "status"))
	if !ok {
		return
	}
	h.list(w, r, func(ctx context.Context, userID int64) ([]*domain.Task, error) {
		return h.taskService.FilterByStatus(ctx, userID, status)
	})
}

// FilterByPriority handles GET /api/tasks/priority/{priority}.
func (h *TaskHandler) FilterByPriority(w http.ResponseWriter, r *http.Request) {
	priority, ok := parsePriority(w, r, chi.URLParam(r, "priority"))
	if !ok {
		return
	}
	h.list(w, r, func(ctx context.Context, userID int64) ([]*domain.Task, error) {
		return h.taskService.FilterByPriority(ctx, userID, priority)
	})
}

// SearchByKeyword handles GET /api/tasks/search?keyword=. The parameter is
// required; its value is used verbatim and may be empty.
func (h *TaskHandler) SearchByKeyword(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("keyword") {
		HandleAPIError(w, r, domain.NewValidationError("keyword", "is required"), "")
		return
	}
	keyword := query.Get("keyword")
	h.list(w, r, func(ctx context.Context, userID int64) ([]*domain.Task, error) {
		return h.taskService.SearchByKeyword(ctx, userID, keyword)
	})
}

// FilterComposite handles GET /api/tasks/filter with optional status,
// priority and keyword parameters.
func (h *TaskHandler) FilterComposite(w http.ResponseWriter, r *http.Request) {
	var filter service.TaskFilter
	if raw, ok := optionalQuery(r, "status"); ok {
		status, ok := parseStatus(w, r, raw)
		if !ok {
			return
		}
		filter.Status = &status
	}
	if raw, ok := optionalQuery(r, "priority"); ok {
		priority, ok := parsePriority(w, r, raw)
		if !ok {
			return
		}
		filter.Priority = &priority
	}
	filter.Keyword = r.URL.Query().Get("keyword")

	h.list(w, r, func(ctx context.Context, userID int64) ([]*domain.Task, error) {
		return h.taskService.FilterComposite(ctx, userID, filter)
	})
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, req.ToInput(), userID)
	h.respondTask(w, r, http.StatusOK, task, err)
}

// UpdateStatus handles PUT and PATCH /api/tasks/{id}/status. The new status
// comes from the status query parameter or, when absent, a JSON body.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	raw, ok := optionalQuery(r, "status")
	if !ok {
		var req StatusUpdateRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		raw = req.Status
	}
	status, ok := parseStatus(w, r, raw)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), taskID, status, userID)
	h.respondTask(w, r, http.StatusOK, task, err)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CountAll handles GET /api/tasks/count.
func (h *TaskHandler) CountAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	n, err := h.taskService.CountAll(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: n})
}

// CountByStatus handles GET /api/tasks/count/status/{status}.
func (h *TaskHandler) CountByStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	status, ok := parseStatus(w, r, chi.URLParam(r, "status"))
	if !ok {
		return
	}

	n, err := h.taskService.CountByStatus(r.Context(), userID, status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: n})
}

// list runs a per-user query and writes the projected tasks.
func (h *TaskHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	query func(ctx context.Context, userID int64) ([]*domain.Task, error),
) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	tasks, err := query(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var displayName string
	if len(tasks) > 0 {
		displayName, err = h.displayName(r.Context(), userID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponses(tasks, displayName))
}

func (h *TaskHandler) respondTask(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	task *domain.Task,
	err error,
) {
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	displayName, err := h.displayName(r.Context(), task.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, status, toTaskResponse(task, displayName))
}

// displayName resolves the owner's display name for task projections.
func (h *TaskHandler) displayName(ctx context.Context, userID int64) (string, error) {
	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}
