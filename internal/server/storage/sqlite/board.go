package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
)

// CreateProject creates a new project and assigns its ID
func (s *Storage) CreateProject(ctx context.Context, project *models.Project) error {
	query := `INSERT INTO projects (name, description, created_at) VALUES (?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query, project.Name, project.Description, project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted project id: %w", err)
	}
	project.ID = id

	return nil
}

// ListProjects returns all projects ordered by name
func (s *Storage) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT id, name, description, created_at FROM projects ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// GetProject retrieves project by ID
func (s *Storage) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	query := `SELECT id, name, description, created_at FROM projects WHERE id = ?`

	p := &models.Project{}
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

// CreateTask creates a new task and assigns its ID
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, project_id, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.ProjectID,
		task.AssigneeID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted task id: %w", err)
	}
	task.ID = id

	return nil
}

// GetTask retrieves task by ID
func (s *Storage) GetTask(ctx context.Context, taskID int64) (*models.Task, error) {
	query := `
		SELECT id, title, description, status, project_id, assignee_id, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`

	t := &models.Task{}
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.ProjectID,
		&t.AssigneeID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// ListTasksByAssignee returns tasks assigned to a user with their projects
func (s *Storage) ListTasksByAssignee(ctx context.Context, userID int64) ([]models.TaskWithProject, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.project_id, t.assignee_id,
		       t.created_at, t.updated_at,
		       p.id, p.name, p.description, p.created_at
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.assignee_id = ?
		ORDER BY t.status ASC, t.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.TaskWithProject{}
	for rows.Next() {
		var t models.TaskWithProject
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.ProjectID,
			&t.AssigneeID,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.Project.ID,
			&t.Project.Name,
			&t.Project.Description,
			&t.Project.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTaskStatus sets the status of a task
func (s *Storage) UpdateTaskStatus(ctx context.Context, taskID int64, status models.TaskStatus) error {
	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, status, time.Now(), taskID)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}
