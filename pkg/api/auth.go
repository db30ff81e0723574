package api

import "time"

// Машинно-проверяемые коды ошибок в ErrorResponse.Error
const (
	ReasonValidation         = "validation"
	ReasonConflict           = "conflict"
	ReasonInvalidCredentials = "invalid credentials"
	ReasonUnauthenticated    = "unauthenticated"
	ReasonForbidden          = "forbidden"
	ReasonNotFound           = "not_found"
	ReasonServerError        = "server_error"
)

// User представляет публичные поля пользователя (без хеша пароля)
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` // минимум 6 символов
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ с сессионным токеном
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"` // подписанный JWT, TTL 24h
	User    User   `json:"user"`
}

// SessionResponse представляет текущую сессию по bearer-токену
type SessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // машинный код ошибки
	Message string `json:"message,omitempty"` // человекочитаемая деталь
}
