package models

import (
	"strings"
	"time"
)

// TaskStatus представляет колонку kanban-доски
type TaskStatus string

// Четыре фиксированных статуса задачи
const (
	StatusBacklog    TaskStatus = "backlog"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
)

// ParseTaskStatus normalizes raw input to a known status.
// Comparison is case-insensitive; unknown values return ok=false.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	switch TaskStatus(strings.ToLower(raw)) {
	case StatusBacklog:
		return StatusBacklog, true
	case StatusTodo:
		return StatusTodo, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusDone:
		return StatusDone, true
	}
	return "", false
}

// Project представляет проект, к которому привязаны задачи
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task представляет задачу на доске
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	ProjectID   int64      `json:"project_id"`
	AssigneeID  int64      `json:"assignee_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskWithProject объединяет задачу с ее проектом для выдачи наружу
type TaskWithProject struct {
	Task
	Project Project `json:"project"`
}
