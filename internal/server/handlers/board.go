package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/teamdesk/internal/board"
	"github.com/iudanet/teamdesk/internal/server/middleware"
	"github.com/iudanet/teamdesk/internal/server/storage"
	"github.com/iudanet/teamdesk/pkg/api"
)

// BoardHandler обрабатывает запросы проектов и задач
// Все маршруты защищены auth middleware
type BoardHandler struct {
	logger *slog.Logger
	board  *board.Service
}

// NewBoardHandler создает новый handler доски
func NewBoardHandler(logger *slog.Logger, boardService *board.Service) *BoardHandler {
	return &BoardHandler{
		logger: logger,
		board:  boardService,
	}
}

// ListProjects обрабатывает GET /api/v1/projects
func (h *BoardHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := h.board.ListProjects(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list projects", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred while fetching projects", http.StatusInternalServerError)
		return
	}

	resp := api.ProjectsResponse{
		Projects: make([]api.Project, 0, len(projects)),
		Count:    len(projects),
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, toAPIProject(p))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// CreateProject обрабатывает POST /api/v1/projects
func (h *BoardHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, api.ReasonValidation, "invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.board.CreateProject(ctx, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, board.ErrValidation) {
			sendError(h.logger, w, api.ReasonValidation, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create project", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred while creating the project", http.StatusInternalServerError)
		return
	}

	resp := api.ProjectResponse{
		Message: "Project created successfully",
		Project: toAPIProject(*project),
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// CreateTask обрабатывает POST /api/v1/tasks
// Задача назначается на текущего пользователя
func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, api.ReasonValidation, "invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.board.CreateTask(ctx, userID, req.ProjectID, req.Title, req.Description, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, board.ErrValidation):
			sendError(h.logger, w, api.ReasonValidation, err.Error(), http.StatusBadRequest)
		case errors.Is(err, storage.ErrProjectNotFound):
			sendError(h.logger, w, api.ReasonNotFound, "project not found", http.StatusNotFound)
		default:
			h.logger.ErrorContext(ctx, "failed to create task", slog.Any("error", err))
			sendError(h.logger, w, api.ReasonServerError, "an error occurred while creating the task", http.StatusInternalServerError)
		}
		return
	}

	resp := api.TaskResponse{
		Message: "Task created successfully",
		Task:    toAPITask(*task),
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// MyTasks обрабатывает GET /api/v1/tasks/my
// Все задачи текущего пользователя, сгруппированные по статусу
func (h *BoardHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	tasks, err := h.board.ListUserTasks(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred while fetching tasks", http.StatusInternalServerError)
		return
	}

	resp := api.TasksResponse{
		Tasks: make([]api.Task, 0, len(tasks)),
		Count: len(tasks),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toAPITask(t))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// UpdateTaskStatus обрабатывает PATCH /api/v1/tasks/{id}
// Менять статус может только assignee задачи
func (h *BoardHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		sendError(h.logger, w, api.ReasonValidation, "invalid task id", http.StatusBadRequest)
		return
	}

	var req api.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, api.ReasonValidation, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		sendError(h.logger, w, api.ReasonValidation, "status is required", http.StatusBadRequest)
		return
	}

	task, err := h.board.UpdateTaskStatus(ctx, userID, taskID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTaskNotFound):
			sendError(h.logger, w, api.ReasonNotFound, "task not found", http.StatusNotFound)
		case errors.Is(err, board.ErrForbidden):
			sendError(h.logger, w, api.ReasonForbidden, "you can only update your own tasks", http.StatusForbidden)
		default:
			h.logger.ErrorContext(ctx, "failed to update task", slog.Any("error", err))
			sendError(h.logger, w, api.ReasonServerError, "an error occurred while updating the task", http.StatusInternalServerError)
		}
		return
	}

	resp := api.TaskResponse{
		Message: "Task updated successfully",
		Task:    toAPITask(*task),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
