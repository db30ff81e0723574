package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/teamdesk/internal/models"
)

const tokenIssuer = "teamdesk"

// SessionClaims представляет JWT claims сессионного токена
type SessionClaims struct {
	UserID string `json:"id"` // числовой ID пользователя в виде строки
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed session tokens (HS256 JWT).
// The signing secret is process-wide configuration loaded once at startup.
//
// There is no server-side revocation list: a token stays valid for its full
// TTL even if the account is deleted afterwards. Expiry is the only
// invalidation mechanism.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec creates a codec with the given signing secret
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{
		secret: secret,
		now:    time.Now,
	}
}

// Issue creates a signed session token for the user with the given TTL
func (c *TokenCodec) Issue(user *models.User, ttl time.Duration) (string, error) {
	now := c.now()
	expiresAt := now.Add(ttl)

	claims := SessionClaims{
		UserID: strconv.FormatInt(user.ID, 10),
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of a session token.
// Returns ErrTokenExpired for a well-formed but expired token and
// ErrTokenInvalid for anything malformed or with a bad signature, so callers
// can distinguish re-login prompts from garbage input.
func (c *TokenCodec) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Проверяем что используется правильный алгоритм подписи
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(c.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}
