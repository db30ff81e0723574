package auth

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
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

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService() (*Service, *mockUserStorage, *TokenCodec) {
	users := newMockUserStorage()
	codec := NewTokenCodec([]byte("test-secret-key"))
	svc := NewService(setupTestLogger(), users, codec)
	return svc, users, codec
}

func TestService_RegisterLogin(t *testing.T) {
	svc, _, codec := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@x.com", user.Email)

	// Логин с теми же данными возвращает токен с email из регистрации
	token, loggedIn, err := svc.Login(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", claims.Email)
	assert.Equal(t, "1", claims.UserID)
}

func TestService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "empty name", userName: "", email: "ana@x.com", password: "secret1"},
		{name: "empty email", userName: "Ana", email: "", password: "secret1"},
		{name: "bad email", userName: "Ana", email: "not-an-email", password: "secret1"},
		{name: "email without tld", userName: "Ana", email: "ana@x", password: "secret1"},
		{name: "short password", userName: "Ana", email: "ana@x.com", password: "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Another Ana", "ana@x.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Дубликат не создан
	assert.Len(t, users.users, 1)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	// Неверный пароль и несуществующий email дают одну и ту же ошибку
	_, _, errWrongPassword := svc.Login(ctx, "ana@x.com", "wrong")
	_, _, errNoUser := svc.Login(ctx, "nobody@x.com", "secret1")

	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errNoUser.Error())
}

func TestService_Register_StripsPasswordHash(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	// Наружу хеш не уходит, в хранилище он есть
	stored := users.users["ana@x.com"]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotContains(t, []any{user.ID, user.Name, user.Email}, stored.PasswordHash)
}
