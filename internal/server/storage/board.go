package storage

import (
	"context"

	"github.com/iudanet/teamdesk/internal/models"
)

// BoardStorage defines interface for project and task persistence
type BoardStorage interface {
	// CreateProject creates a new project and assigns its ID
	CreateProject(ctx context.Context, project *models.Project) error

	// ListProjects returns all projects ordered by name
	ListProjects(ctx context.Context) ([]models.Project, error)

	// GetProject retrieves project by ID
	// Returns ErrProjectNotFound if project doesn't exist
	GetProject(ctx context.Context, projectID int64) (*models.Project, error)

	// CreateTask creates a new task and assigns its ID
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTask retrieves task by ID
	// Returns ErrTaskNotFound if task doesn't exist
	GetTask(ctx context.Context, taskID int64) (*models.Task, error)

	// ListTasksByAssignee returns tasks assigned to a user with their
	// projects, ordered by status then creation time descending
	ListTasksByAssignee(ctx context.Context, userID int64) ([]models.TaskWithProject, error)

	// UpdateTaskStatus sets the status of a task
	// Returns ErrTaskNotFound if task doesn't exist
	UpdateTaskStatus(ctx context.Context, taskID int64, status models.TaskStatus) error
}
