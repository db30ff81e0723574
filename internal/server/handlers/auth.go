package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/teamdesk/internal/auth"
	"github.com/iudanet/teamdesk/internal/server/storage"
	"github.com/iudanet/teamdesk/pkg/api"
)

// AuthHandler обрабатывает запросы регистрации и входа
type AuthHandler struct {
	logger *slog.Logger
	auth   *auth.Service
	codec  *auth.TokenCodec
	users  storage.UserStorage
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, authService *auth.Service, codec *auth.TokenCodec, users storage.UserStorage) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		auth:   authService,
		codec:  codec,
		users:  users,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Битый JSON - это ошибка валидации, а не 500
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonValidation, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			sendError(h.logger, w, api.ReasonValidation, err.Error(), http.StatusBadRequest)
		case errors.Is(err, auth.ErrEmailTaken):
			sendError(h.logger, w, api.ReasonConflict, "user with this email already exists", http.StatusConflict)
		default:
			h.logger.ErrorContext(ctx, "registration failed", slog.Any("error", err))
			sendError(h.logger, w, api.ReasonServerError, "an error occurred during registration", http.StatusInternalServerError)
		}
		return
	}

	resp := api.RegisterResponse{
		Message: "User created successfully",
		User:    toAPIUser(user),
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
// Аутентификация по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonValidation, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		sendError(h.logger, w, api.ReasonValidation, "missing email or password", http.StatusBadRequest)
		return
	}

	token, user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Одинаковый ответ для неизвестного email и неверного пароля
			sendError(h.logger, w, api.ReasonInvalidCredentials, "invalid email or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred during login", http.StatusInternalServerError)
		return
	}

	resp := api.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    toAPIUser(user),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Session обрабатывает GET /api/v1/auth/session
// Возвращает текущую сессию по bearer-токену; без токена отвечает 200
// с authenticated=false, это не защищенный маршрут
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, _, ok := auth.AuthenticateRequest(h.codec, r)
	if !ok {
		sendJSON(h.logger, w, api.SessionResponse{Authenticated: false}, http.StatusOK)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Токен пережил аккаунт - сессии нет
			sendJSON(h.logger, w, api.SessionResponse{Authenticated: false}, http.StatusOK)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred while retrieving session", http.StatusInternalServerError)
		return
	}

	apiUser := toAPIUser(user.Public())
	sendJSON(h.logger, w, api.SessionResponse{
		Authenticated: true,
		User:          &apiUser,
	}, http.StatusOK)
}
