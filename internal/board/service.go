// Package board implements the project/task tracker with the fixed
// four-state kanban status flow.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
)

// Board service errors
var (
	// ErrValidation indicates a missing required field
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates an attempt to modify someone else's task
	ErrForbidden = errors.New("not the task assignee")
)

// Service handles project and task operations
type Service struct {
	logger *slog.Logger
	store  storage.BoardStorage
}

// NewService creates a new board service
func NewService(logger *slog.Logger, store storage.BoardStorage) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// ListProjects returns all projects ordered by name
func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a new project
func (s *Service) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.InfoContext(ctx, "project created",
		slog.Int64("project_id", project.ID))

	return project, nil
}

// CreateTask creates a task in a project, assigned to the caller.
// Unknown raw status falls back to "todo".
func (s *Service) CreateTask(ctx context.Context, userID, projectID int64, title, description, rawStatus string) (*models.TaskWithProject, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrValidation)
	}
	if projectID == 0 {
		return nil, fmt.Errorf("%w: project is required", ErrValidation)
	}

	// Проверяем что проект существует
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	status, ok := models.ParseTaskStatus(rawStatus)
	if !ok {
		status = models.StatusTodo
	}

	now := time.Now()
	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		ProjectID:   projectID,
		AssigneeID:  userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("project_id", projectID),
		slog.Int64("assignee_id", userID))

	return &models.TaskWithProject{Task: *task, Project: *project}, nil
}

// ListUserTasks returns tasks assigned to the user, grouped by status and
// newest first within a group
func (s *Service) ListUserTasks(ctx context.Context, userID int64) ([]models.TaskWithProject, error) {
	tasks, err := s.store.ListTasksByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskStatus moves a task to another kanban column. Only the assignee
// may move their task. An unknown status is a no-op: the task is returned
// unchanged without an error.
func (s *Service) UpdateTaskStatus(ctx context.Context, userID, taskID int64, rawStatus string) (*models.TaskWithProject, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.AssigneeID != userID {
		return nil, ErrForbidden
	}

	project, err := s.store.GetProject(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	status, ok := models.ParseTaskStatus(rawStatus)
	if !ok {
		// Неизвестный статус - возвращаем задачу как есть
		return &models.TaskWithProject{Task: *task, Project: *project}, nil
	}

	if err := s.store.UpdateTaskStatus(ctx, taskID, status); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	task.Status = status

	s.logger.InfoContext(ctx, "task status updated",
		slog.Int64("task_id", taskID),
		slog.String("status", string(status)))

	return &models.TaskWithProject{Task: *task, Project: *project}, nil
}
