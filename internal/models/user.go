package models

import "time"

// User представляет пользователя портала
type User struct {
	ID             int64      `json:"id"`              // автоинкрементный ID из БД
	Email          string     `json:"email"`           // уникальный email (exact-match lookup)
	Name           string     `json:"name"`            // отображаемое имя
	PasswordHash   string     `json:"-"`               // bcrypt хеш пароля, наружу не отдается
	ExternalTokens *TokenPair `json:"-"`               // nil = внешний аккаунт не подключен
	CreatedAt      time.Time  `json:"created_at"`      // время создания
	UpdatedAt      time.Time  `json:"updated_at"`      // время последнего обновления
}

// TokenPair holds the OAuth tokens issued by the external notes provider.
// Access and refresh tokens always travel together: a user either has the
// full pair or none at all. A zero Expiry means the access token needs a
// refresh before use.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// Linked reports whether the user has a connected external account.
func (u *User) Linked() bool {
	return u.ExternalTokens != nil
}

// PublicUser is the outward-facing projection of a User without credentials.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips credential fields before the user leaves the service boundary.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
