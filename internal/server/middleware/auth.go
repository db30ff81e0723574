package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/teamdesk/internal/auth"
)

// contextKey - отдельный тип ключа, чтобы не конфликтовать с другими пакетами
type contextKey string

const (
	userIDKey contextKey = "user_id"
	claimsKey contextKey = "claims"
)

// UserID returns the authenticated caller's id from the request context
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// Claims returns the verified session claims from the request context
func Claims(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.SessionClaims)
	return claims, ok
}

// Auth создает middleware для проверки сессионного токена
// Любой отказ (нет заголовка, битый токен, истекший токен) дает 401
func Auth(logger *slog.Logger, codec *auth.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, claims, ok := auth.AuthenticateRequest(codec, r)
			if !ok {
				logger.Warn("unauthenticated request",
					"method", r.Method,
					"path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Добавляем identity в контекст запроса
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, claimsKey, claims)

			logger.Debug("user authenticated", "user_id", userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
