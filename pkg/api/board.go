package api

import "time"

// Project представляет проект
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task представляет задачу с проектом
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"` // backlog | todo | inprogress | done
	ProjectID   int64     `json:"project_id"`
	AssigneeID  int64     `json:"assignee_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Project     *Project  `json:"project,omitempty"`
}

// CreateProjectRequest представляет запрос на создание проекта
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectResponse представляет ответ с одним проектом
type ProjectResponse struct {
	Message string  `json:"message"`
	Project Project `json:"project"`
}

// ProjectsResponse представляет список проектов
type ProjectsResponse struct {
	Projects []Project `json:"projects"`
	Count    int       `json:"count"`
}

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectID   int64  `json:"project_id"`
	Status      string `json:"status"` // опционально, по умолчанию todo
}

// UpdateTaskStatusRequest представляет запрос на смену статуса задачи
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// TaskResponse представляет ответ с одной задачей
type TaskResponse struct {
	Message string `json:"message"`
	Task    Task   `json:"task"`
}

// TasksResponse представляет список задач пользователя
type TasksResponse struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}
