package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/iudanet/teamdesk/internal/server/middleware"
	"github.com/iudanet/teamdesk/internal/server/storage"
	"github.com/iudanet/teamdesk/internal/vault"
	"github.com/iudanet/teamdesk/pkg/api"
)

// VaultHandler обрабатывает подключение внешнего хранилища заметок
// и выдачу последних заметок
type VaultHandler struct {
	logger       *slog.Logger
	vault        *vault.Service
	notes        *vault.NotesClient
	users        storage.UserStorage
	vaultPath    string
	dashboardURL string
}

// NewVaultHandler создает новый handler интеграции
func NewVaultHandler(
	logger *slog.Logger,
	vaultService *vault.Service,
	notes *vault.NotesClient,
	users storage.UserStorage,
	vaultPath string,
	dashboardURL string,
) *VaultHandler {
	return &VaultHandler{
		logger:       logger,
		vault:        vaultService,
		notes:        notes,
		users:        users,
		vaultPath:    vaultPath,
		dashboardURL: dashboardURL,
	}
}

// Connect обрабатывает GET /api/v1/vault/connect
// Возвращает URL авторизации провайдера для текущего пользователя
func (h *VaultHandler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	authURL, err := h.vault.InitiateLink(userID)
	if err != nil {
		if errors.Is(err, vault.ErrNotConfigured) {
			sendError(h.logger, w, api.ReasonServerError, "vault provider not configured", http.StatusInternalServerError)
			return
		}
		h.logger.ErrorContext(ctx, "failed to initiate link", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "failed to initiate vault connection", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ConnectResponse{AuthURL: authURL}, http.StatusOK)
}

// Callback обрабатывает GET /api/v1/vault/callback
// Redirect-based handoff от провайдера: code + state в query.
// Маршрут не защищен - пользователя идентифицирует state.
// Любой исход уходит редиректом на dashboard, без 500
func (h *VaultHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	// Провайдер сообщил об отказе пользователя или своей ошибке
	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.WarnContext(ctx, "provider returned error on callback",
			slog.String("error", providerErr))
		h.redirectError(w, r, providerErr)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		h.redirectError(w, r, "missing_code_or_state")
		return
	}

	if err := h.vault.CompleteLink(ctx, state, code); err != nil {
		switch {
		case errors.Is(err, vault.ErrInvalidState):
			h.redirectError(w, r, "invalid_state")
		case errors.Is(err, vault.ErrNotConfigured):
			h.redirectError(w, r, "oauth_not_configured")
		case errors.Is(err, vault.ErrExchangeFailed):
			h.redirectError(w, r, "token_exchange_failed")
		default:
			h.logger.ErrorContext(ctx, "callback failed", slog.Any("error", err))
			h.redirectError(w, r, "oauth_callback_failed")
		}
		return
	}

	http.Redirect(w, r, h.dashboardURL+"?vault_connected=true", http.StatusFound)
}

// redirectError отправляет пользователя на dashboard с кодом ошибки в query
func (h *VaultHandler) redirectError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.dashboardURL+"?error="+url.QueryEscape(reason), http.StatusFound)
}

// Disconnect обрабатывает POST /api/v1/vault/disconnect
// Идемпотентно очищает пару токенов
func (h *VaultHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	if err := h.vault.Disconnect(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, api.ReasonNotFound, "user not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to disconnect", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "failed to disconnect external account", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.DisconnectResponse{Success: true}, http.StatusOK)
}

// Status обрабатывает GET /api/v1/vault/status
func (h *VaultHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "failed to check connection status", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.VaultStatusResponse{Connected: h.vault.IsLinked(user)}, http.StatusOK)
}

// Structure обрабатывает GET /api/v1/vault/structure
// Верхний уровень хранилища: папки перед файлами. Проблемы интеграции
// отдаются так же, как в Notes - 200 с needs_auth
func (h *VaultHandler) Structure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred while fetching vault structure", http.StatusInternalServerError)
		return
	}

	if !h.vault.IsLinked(user) {
		sendJSON(h.logger, w, api.StructureResponse{
			Structure: []api.StructureEntry{},
			NeedsAuth: true,
			Error:     "external account not connected",
		}, http.StatusOK)
		return
	}

	accessToken, err := h.vault.EnsureFreshToken(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrRefreshFailed), errors.Is(err, vault.ErrNotLinked):
			sendJSON(h.logger, w, api.StructureResponse{
				Structure: []api.StructureEntry{},
				NeedsAuth: true,
				Error:     "token expired, please reconnect",
			}, http.StatusOK)
		case errors.Is(err, vault.ErrNotConfigured):
			sendJSON(h.logger, w, api.StructureResponse{
				Structure: []api.StructureEntry{},
				Error:     "vault integration not configured",
			}, http.StatusOK)
		default:
			h.logger.ErrorContext(ctx, "failed to refresh token", slog.Any("error", err))
			sendError(h.logger, w, api.ReasonServerError, "an error occurred while fetching vault structure", http.StatusInternalServerError)
		}
		return
	}

	entries, err := h.notes.Structure(ctx, accessToken, h.vaultPath)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read vault structure",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		sendJSON(h.logger, w, api.StructureResponse{
			Structure: []api.StructureEntry{},
			NeedsAuth: true,
			Error:     "failed to read vault, please reconnect",
		}, http.StatusOK)
		return
	}

	resp := api.StructureResponse{Structure: make([]api.StructureEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Structure = append(resp.Structure, api.StructureEntry{
			ID:           e.ID,
			Name:         e.Name,
			Type:         e.Type,
			Path:         e.Path,
			LastModified: e.LastModified,
		})
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Notes обрабатывает GET /api/v1/vault/notes
// Последние заметки из внешнего хранилища. Проблемы интеграции отдаются
// как 200 с needs_auth, чтобы фронт показал "переподключите аккаунт",
// а не падал на 500
func (h *VaultHandler) Notes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		sendError(h.logger, w, api.ReasonUnauthenticated, "missing identity", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, api.ReasonServerError, "an error occurred while fetching notes", http.StatusInternalServerError)
		return
	}

	if !h.vault.IsLinked(user) {
		sendJSON(h.logger, w, api.NotesResponse{
			Notes:     []api.Note{},
			NeedsAuth: true,
			Error:     "external account not connected",
		}, http.StatusOK)
		return
	}

	accessToken, err := h.vault.EnsureFreshToken(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrRefreshFailed), errors.Is(err, vault.ErrNotLinked):
			sendJSON(h.logger, w, api.NotesResponse{
				Notes:     []api.Note{},
				NeedsAuth: true,
				Error:     "token expired, please reconnect",
			}, http.StatusOK)
		case errors.Is(err, vault.ErrNotConfigured):
			sendJSON(h.logger, w, api.NotesResponse{
				Notes: []api.Note{},
				Error: "vault integration not configured",
			}, http.StatusOK)
		default:
			h.logger.ErrorContext(ctx, "failed to refresh token", slog.Any("error", err))
			sendError(h.logger, w, api.ReasonServerError, "an error occurred while fetching notes", http.StatusInternalServerError)
		}
		return
	}

	notes, err := h.notes.RecentNotes(ctx, accessToken, h.vaultPath)
	if err != nil {
		// Провайдер недоступен или отозвал токен - не 500
		h.logger.WarnContext(ctx, "failed to read vault",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		sendJSON(h.logger, w, api.NotesResponse{
			Notes:     []api.Note{},
			NeedsAuth: true,
			Error:     "failed to read vault, please reconnect",
		}, http.StatusOK)
		return
	}

	resp := api.NotesResponse{Notes: make([]api.Note, 0, len(notes))}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, api.Note{
			ID:           n.ID,
			Title:        n.Title,
			LastModified: n.LastModified,
			Tags:         n.Tags,
		})
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
