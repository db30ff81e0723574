package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/teamdesk/internal/auth"
	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
	"github.com/iudanet/teamdesk/pkg/api"
)

// mockUserStorage is a map-backed implementation of UserStorage for testing
type mockUserStorage struct {
	users  map[string]*models.User // email -> User
	nextID int64
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrEmailTaken
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateExternalTokens(ctx context.Context, userID int64, pair *models.TokenPair) error {
	for _, user := range m.users {
		if user.ID == userID {
			user.ExternalTokens = pair
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type authEnv struct {
	handler *AuthHandler
	users   *mockUserStorage
	codec   *auth.TokenCodec
}

func newAuthEnv() *authEnv {
	logger := testLogger()
	users := newMockUserStorage()
	codec := auth.NewTokenCodec([]byte("test-secret-key"))
	service := auth.NewService(logger, users, codec)

	return &authEnv{
		handler: NewAuthHandler(logger, service, codec, users),
		users:   users,
		codec:   codec,
	}
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestAuthHandler_RegisterLoginFlow(t *testing.T) {
	env := newAuthEnv()

	// Регистрация
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name":"Ana","email":"ana@x.com","password":"secret1"}`))
	env.handler.Register(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	registered := decodeJSON[api.RegisterResponse](t, w)
	assert.Equal(t, int64(1), registered.User.ID)
	assert.Equal(t, "Ana", registered.User.Name)

	// Вход с неверным паролем
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ana@x.com","password":"wrong"}`))
	env.handler.Login(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	failed := decodeJSON[api.ErrorResponse](t, w)
	assert.Equal(t, api.ReasonInvalidCredentials, failed.Error)

	// Вход с верным паролем
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ana@x.com","password":"secret1"}`))
	env.handler.Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	logged := decodeJSON[api.LoginResponse](t, w)
	require.NotEmpty(t, logged.Token)

	claims, err := env.codec.Verify(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	assert.Equal(t, "ana@x.com", claims.Email)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := newAuthEnv()
	body := `{"name":"Ana","email":"ana@x.com","password":"secret1"}`

	w := httptest.NewRecorder()
	env.handler.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	env.handler.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeJSON[api.ErrorResponse](t, w)
	assert.Equal(t, api.ReasonConflict, resp.Error)
}

func TestAuthHandler_Register_BadRequests(t *testing.T) {
	env := newAuthEnv()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "bad email", body: `{"name":"Ana","email":"not-an-email","password":"secret1"}`},
		{name: "short password", body: `{"name":"Ana","email":"ana@x.com","password":"123"}`},
		{name: "empty name", body: `{"name":"","email":"ana@x.com","password":"secret1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.handler.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeJSON[api.ErrorResponse](t, w)
			assert.Equal(t, api.ReasonValidation, resp.Error)
		})
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	env := newAuthEnv()

	w := httptest.NewRecorder()
	env.handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ana@x.com"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Session(t *testing.T) {
	env := newAuthEnv()

	// Без токена - не ошибка, просто нет сессии
	w := httptest.NewRecorder()
	env.handler.Session(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil))

	require.Equal(t, http.StatusOK, w.Code)
	anon := decodeJSON[api.SessionResponse](t, w)
	assert.False(t, anon.Authenticated)
	assert.Nil(t, anon.User)

	// С токеном - полная сессия
	user := &models.User{Email: "ana@x.com", Name: "Ana", PasswordHash: "hash"}
	require.NoError(t, env.users.CreateUser(context.Background(), user))

	token, err := env.codec.Issue(user, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.handler.Session(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	session := decodeJSON[api.SessionResponse](t, w)
	assert.True(t, session.Authenticated)
	require.NotNil(t, session.User)
	assert.Equal(t, "ana@x.com", session.User.Email)
}

func TestAuthHandler_Session_DeletedUser(t *testing.T) {
	env := newAuthEnv()

	// Токен валиден, но аккаунта уже нет
	token, err := env.codec.Issue(&models.User{ID: 99, Email: "gone@x.com", Name: "Gone"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.handler.Session(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	session := decodeJSON[api.SessionResponse](t, w)
	assert.False(t, session.Authenticated)
}
