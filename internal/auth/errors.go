package auth

import "errors"

// Auth service errors
var (
	// ErrValidation indicates bad input shape or length; the wrapped
	// message carries the field-level detail
	ErrValidation = errors.New("validation failed")

	// ErrEmailTaken indicates a registration attempt with an existing email
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Кейсы намеренно не различаются, чтобы не допустить перебор аккаунтов
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates a session token past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates a malformed token or a bad signature
	ErrTokenInvalid = errors.New("invalid token")
)
