package vault

import "errors"

// Vault integration errors
var (
	// ErrNotConfigured indicates missing provider credentials at startup.
	// Роуты интеграции в этом случае отвечают ошибкой, а не деградируют молча
	ErrNotConfigured = errors.New("vault provider not configured")

	// ErrNotLinked indicates the user never connected an external account
	ErrNotLinked = errors.New("external account not linked")

	// ErrRefreshFailed indicates the provider rejected the refresh token.
	// Callers treat this as "integration needs re-authorization", not a
	// fatal system error
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrInvalidState indicates a callback state that does not parse back
	// to a user id
	ErrInvalidState = errors.New("invalid state parameter")

	// ErrExchangeFailed indicates the authorization code exchange was
	// rejected by the provider
	ErrExchangeFailed = errors.New("code exchange failed")
)
