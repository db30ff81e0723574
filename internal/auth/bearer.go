package auth

import (
	"net/http"
	"strconv"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the token following the case-sensitive "Bearer "
// prefix of the Authorization header. Missing header or wrong prefix
// returns ok=false without touching the codec.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}

	return token, true
}

// AuthenticateRequest verifies the bearer token of an inbound request and
// returns the caller's numeric user id and claims.
// Это чистая функция без побочных эффектов: безопасно звать на каждом
// защищенном маршруте. Любой отказ кодека схлопывается в ok=false.
func AuthenticateRequest(codec *TokenCodec, r *http.Request) (int64, *SessionClaims, bool) {
	tokenString, ok := BearerToken(r)
	if !ok {
		return 0, nil, false
	}

	claims, err := codec.Verify(tokenString)
	if err != nil {
		return 0, nil, false
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		// Нечисловой subject - токен не наш
		return 0, nil, false
	}

	return userID, claims, true
}
