package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с машинным кодом ошибки
func sendError(logger *slog.Logger, w http.ResponseWriter, reason, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   reason,
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// toAPIUser конвертирует публичного пользователя в wire-тип
func toAPIUser(u models.PublicUser) api.User {
	return api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// toAPIProject конвертирует проект в wire-тип
func toAPIProject(p models.Project) api.Project {
	return api.Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// toAPITask конвертирует задачу с проектом в wire-тип
func toAPITask(t models.TaskWithProject) api.Task {
	project := toAPIProject(t.Project)
	return api.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Project:     &project,
	}
}
